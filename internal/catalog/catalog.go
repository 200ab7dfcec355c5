// Package catalog stores the reference shows and episodes used for matching.
//
// Two backends exist: a directory of JSON files and a SQLite database.
// Open picks one from the path.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mydehq/otr/internal/types"
)

// Open returns the repository stored at path. Paths ending in .db, .sqlite
// or .sqlite3 open SQLite; anything else is a JSON directory.
func Open(path string) (types.CatalogRepository, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if IsSQLite(path) {
		return OpenSQLite(path)
	}
	return OpenJSON(path)
}

// IsSQLite reports whether path names a SQLite catalog
func IsSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// DefaultPath is $XDG_DATA_HOME/otr/catalog, or ~/.local/share/otr/catalog
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "otr", "catalog"), nil
}

// Find returns the show with id
func Find(ctx context.Context, c types.Catalog, id int) (*types.CatalogEntry, error) {
	shows, err := c.Shows(ctx)
	if err != nil {
		return nil, err
	}
	for i := range shows {
		if shows[i].ID == id {
			return &shows[i], nil
		}
	}
	return nil, types.ErrShowNotFound{ID: id}
}

// Summary is a lightweight listing row
type Summary struct {
	ID           int
	Title        string
	Aliases      int
	EpisodeCount int
}

// Summarize lists every show with its episode count
func Summarize(ctx context.Context, c types.Catalog) ([]Summary, error) {
	shows, err := c.Shows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(shows))
	for _, s := range shows {
		eps, err := c.Episodes(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("episodes of show %d: %w", s.ID, err)
		}
		out = append(out, Summary{ID: s.ID, Title: s.Title, Aliases: len(s.Aliases), EpisodeCount: len(eps)})
	}
	return out, nil
}
