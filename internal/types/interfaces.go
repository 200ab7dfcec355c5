// Package types defines interfaces for otr components.
package types

import "context"

// Catalog supplies shows and, on demand, a show's episodes
type Catalog interface {
	// Shows returns every known show in catalog order
	Shows(ctx context.Context) ([]CatalogEntry, error)

	// Episodes returns the episodes of one show
	Episodes(ctx context.Context, showID int) ([]EpisodeRecord, error)
}

// CatalogRepository is a Catalog that can also be written
type CatalogRepository interface {
	Catalog

	// Save stores a show with its episodes, replacing any previous copy
	Save(ctx context.Context, show CatalogEntry, episodes []EpisodeRecord) error

	// Delete removes a show and its episodes
	Delete(ctx context.Context, showID int) error

	// Path returns where the catalog lives
	Path() string

	// Close releases any handle held by the repository
	Close() error
}

// BackupManager handles file backup/restore operations
type BackupManager interface {
	// Backup creates a backup of files before renaming
	// mappings is oldName -> newName
	Backup(ctx context.Context, dir string, mappings map[string]string) error

	// Restore restores files from the backup
	Restore(ctx context.Context, dir string) error

	// Clean removes the backup for a specific directory
	Clean(ctx context.Context, dir string) error

	// ListAll returns all backup records (global)
	ListAll(ctx context.Context) ([]BackupRecord, error)

	// CleanAll removes all backups globally
	CleanAll(ctx context.Context) error
}

// Tagger writes resolved metadata into a media file
type Tagger interface {
	TagFile(ctx context.Context, path string, meta *ResolvedMetadata) error
}
