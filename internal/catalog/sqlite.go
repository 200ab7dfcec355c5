package catalog

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mydehq/otr/internal/airdate"
	"github.com/mydehq/otr/internal/types"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// SQLiteRepository keeps the catalog in a single SQLite file
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path and applies migrations
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	repo := &SQLiteRepository{db: db, path: path}
	if err := repo.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database connection
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Path returns the database file
func (r *SQLiteRepository) Path() string {
	return r.path
}

// Shows returns every show ordered by id, aliases in stored order
func (r *SQLiteRepository) Shows(ctx context.Context) ([]types.CatalogEntry, error) {
	shows, index, err := r.listShows(ctx)
	if err != nil {
		return nil, err
	}

	aliases, err := r.db.QueryContext(ctx, `SELECT show_id, title FROM show_aliases ORDER BY show_id, position`)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer aliases.Close()
	for aliases.Next() {
		var id int
		var title string
		if err := aliases.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		if i, ok := index[id]; ok {
			shows[i].Aliases = append(shows[i].Aliases, title)
		}
	}
	return shows, aliases.Err()
}

func (r *SQLiteRepository) listShows(ctx context.Context) ([]types.CatalogEntry, map[int]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title FROM shows ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("list shows: %w", err)
	}
	defer rows.Close()

	var shows []types.CatalogEntry
	index := make(map[int]int)
	for rows.Next() {
		var s types.CatalogEntry
		if err := rows.Scan(&s.ID, &s.Title); err != nil {
			return nil, nil, fmt.Errorf("scan show: %w", err)
		}
		index[s.ID] = len(shows)
		shows = append(shows, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate shows: %w", err)
	}
	return shows, index, nil
}

// Episodes returns a show's episodes in stored order
func (r *SQLiteRepository) Episodes(ctx context.Context, showID int) ([]types.EpisodeRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT e.id, e.number, e.air_date, COALESCE(t.title, '')
        FROM episodes e
        LEFT JOIN episode_titles t ON t.episode_id = e.id
        WHERE e.show_id = ?
        ORDER BY e.position, t.position`, showID)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []types.EpisodeRecord
	lastID := int64(-1)
	for rows.Next() {
		var (
			id     int64
			number int
			date   string
			title  string
		)
		if err := rows.Scan(&id, &number, &date, &title); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		if id != lastID {
			d, err := airdate.Parse(date)
			if err != nil {
				return nil, fmt.Errorf("show %d episode %d: %w", showID, number, err)
			}
			episodes = append(episodes, types.EpisodeRecord{Number: number, Date: d})
			lastID = id
		}
		if title != "" {
			last := &episodes[len(episodes)-1]
			last.Titles = append(last.Titles, title)
		}
	}
	return episodes, rows.Err()
}

// Save replaces a show and all its episodes in one transaction
func (r *SQLiteRepository) Save(ctx context.Context, show types.CatalogEntry, episodes []types.EpisodeRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := deleteShow(ctx, tx, show.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO shows (id, title) VALUES (?, ?)`, show.ID, show.Title); err != nil {
		return fmt.Errorf("insert show %d: %w", show.ID, err)
	}
	for i, alias := range show.Aliases {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO show_aliases (show_id, position, title) VALUES (?, ?, ?)`,
			show.ID, i, alias); err != nil {
			return fmt.Errorf("insert alias: %w", err)
		}
	}

	for i, ep := range episodes {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO episodes (show_id, position, number, air_date) VALUES (?, ?, ?, ?)`,
			show.ID, i, ep.Number, ep.Date.String())
		if err != nil {
			return fmt.Errorf("insert episode %d: %w", ep.Number, err)
		}
		episodeID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		for j, title := range ep.Titles {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO episode_titles (episode_id, position, title) VALUES (?, ?, ?)`,
				episodeID, j, title); err != nil {
				return fmt.Errorf("insert episode title: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Delete removes a show with its aliases, episodes and titles
func (r *SQLiteRepository) Delete(ctx context.Context, showID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	n, err := deleteShow(ctx, tx, showID)
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrShowNotFound{ID: showID}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// deleteShow clears a show's rows and reports how many shows went away
func deleteShow(ctx context.Context, tx *sql.Tx, showID int) (int64, error) {
	stmts := []string{
		`DELETE FROM episode_titles WHERE episode_id IN (SELECT id FROM episodes WHERE show_id = ?)`,
		`DELETE FROM episodes WHERE show_id = ?`,
		`DELETE FROM show_aliases WHERE show_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt, showID); err != nil {
			return 0, fmt.Errorf("clear show %d: %w", showID, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM shows WHERE id = ?`, showID)
	if err != nil {
		return 0, fmt.Errorf("delete show %d: %w", showID, err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) applyMigrations(ctx context.Context) error {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, name := range names {
		version := strings.TrimSuffix(name, ".sql")
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", version).Scan(&count); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		body, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("record migration %s: %w", version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}
