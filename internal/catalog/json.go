package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mydehq/otr/internal/airdate"
	"github.com/mydehq/otr/internal/types"
)

const (
	showsFile   = "shows.json"
	episodesDir = "episodes"
)

// JSONRepository keeps shows.json plus one episodes/<id>.json per show
type JSONRepository struct {
	baseDir string
}

// OpenJSON opens, creating if needed, a JSON catalog directory
func OpenJSON(dir string) (*JSONRepository, error) {
	if err := os.MkdirAll(filepath.Join(dir, episodesDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	return &JSONRepository{baseDir: dir}, nil
}

// showRecord is the on-disk show. It also reads the legacy ptitle/idp keys.
type showRecord struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Aliases []string `json:"aliases,omitempty"`
}

func (r *showRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID      json.Number `json:"id"`
		IDP     json.Number `json:"idp"`
		Title   string      `json:"title"`
		PTitle  string      `json:"ptitle"`
		Aliases []string    `json:"aliases"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id := raw.ID
	if id == "" {
		id = raw.IDP
	}
	n, err := strconv.Atoi(id.String())
	if err != nil {
		return fmt.Errorf("invalid show id %q: %w", id, err)
	}

	r.ID = n
	r.Title = raw.Title
	if r.Title == "" {
		r.Title = raw.PTitle
	}
	r.Aliases = raw.Aliases
	return nil
}

type episodeRecord struct {
	Number int      `json:"number"`
	Date   string   `json:"date,omitempty"`
	Titles []string `json:"titles"`
}

type episodesDoc struct {
	ShowID   int             `json:"show_id"`
	Episodes []episodeRecord `json:"episodes"`
}

// Shows returns shows in file order
func (r *JSONRepository) Shows(ctx context.Context) ([]types.CatalogEntry, error) {
	records, err := r.readShows()
	if err != nil {
		return nil, err
	}
	shows := make([]types.CatalogEntry, len(records))
	for i, rec := range records {
		shows[i] = types.CatalogEntry{ID: rec.ID, Title: rec.Title, Aliases: rec.Aliases}
	}
	return shows, nil
}

// Episodes returns the episodes of a show. A show without an episode file
// has no episodes.
func (r *JSONRepository) Episodes(ctx context.Context, showID int) ([]types.EpisodeRecord, error) {
	data, err := os.ReadFile(r.episodesPath(showID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read episodes of show %d: %w", showID, err)
	}

	var records []episodeRecord
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &records)
	} else {
		var doc episodesDoc
		err = json.Unmarshal(data, &doc)
		records = doc.Episodes
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse episodes of show %d: %w", showID, err)
	}

	episodes := make([]types.EpisodeRecord, 0, len(records))
	for _, rec := range records {
		date, err := airdate.Parse(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("show %d episode %d: %w", showID, rec.Number, err)
		}
		episodes = append(episodes, types.EpisodeRecord{Number: rec.Number, Date: date, Titles: rec.Titles})
	}
	return episodes, nil
}

// Save stores show and replaces its episode file
func (r *JSONRepository) Save(ctx context.Context, show types.CatalogEntry, episodes []types.EpisodeRecord) error {
	records, err := r.readShows()
	if err != nil {
		return err
	}

	rec := showRecord{ID: show.ID, Title: show.Title, Aliases: show.Aliases}
	replaced := false
	for i := range records {
		if records[i].ID == show.ID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}

	doc := episodesDoc{ShowID: show.ID, Episodes: make([]episodeRecord, len(episodes))}
	for i, ep := range episodes {
		doc.Episodes[i] = episodeRecord{Number: ep.Number, Date: ep.Date.String(), Titles: ep.Titles}
	}

	if err := writeJSON(r.episodesPath(show.ID), doc); err != nil {
		return err
	}
	return writeJSON(filepath.Join(r.baseDir, showsFile), records)
}

// Delete removes a show and its episode file
func (r *JSONRepository) Delete(ctx context.Context, showID int) error {
	records, err := r.readShows()
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.ID != showID {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return types.ErrShowNotFound{ID: showID}
	}

	if err := os.Remove(r.episodesPath(showID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete episodes file: %w", err)
	}
	return writeJSON(filepath.Join(r.baseDir, showsFile), kept)
}

// Path returns the catalog directory
func (r *JSONRepository) Path() string {
	return r.baseDir
}

// Close is a no-op for the JSON backend
func (r *JSONRepository) Close() error {
	return nil
}

func (r *JSONRepository) readShows() ([]showRecord, error) {
	data, err := os.ReadFile(filepath.Join(r.baseDir, showsFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var records []showRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return records, nil
}

func (r *JSONRepository) episodesPath(showID int) string {
	return filepath.Join(r.baseDir, episodesDir, strconv.Itoa(showID)+".json")
}

// writeJSON writes through a temp file so readers never see half a file
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
