// Package backup keeps a copy of each renamed directory's originals so a
// batch can be undone.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"github.com/mydehq/otr/internal/types"
)

const (
	RegistryFileName = "backup_registry.json"
	MappingsFileName = "mappings.json"
	DefaultDirName   = ".otr_backup"
)

// Manager stores backups next to the files and tracks them in a registry
// under the user's cache directory.
type Manager struct {
	registryPath string
	dirName      string
	lock         *flock.Flock
}

// New creates a Manager. cacheRoot holds the registry, dirName is the
// per-directory backup folder.
func New(cacheRoot, dirName string) *Manager {
	if dirName == "" {
		dirName = DefaultDirName
	}
	registry := filepath.Join(cacheRoot, RegistryFileName)
	return &Manager{
		registryPath: registry,
		dirName:      dirName,
		lock:         flock.New(registry + ".lock"),
	}
}

// DefaultCacheRoot returns $XDG_CACHE_HOME/otr or ~/.cache/otr
func DefaultCacheRoot() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "otr")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "otr")
	}
	return filepath.Join(home, ".cache", "otr")
}

// DirName is the backup folder created inside each renamed directory
func (m *Manager) DirName() string {
	return m.dirName
}

// Backup copies every old name in mappings into the backup folder and
// records the old -> new mapping. A previous backup of dir is replaced.
func (m *Manager) Backup(ctx context.Context, dir string, mappings map[string]string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	if err := m.Clean(ctx, absDir); err != nil {
		return err
	}

	backupPath := filepath.Join(absDir, m.dirName)
	if err := os.MkdirAll(backupPath, 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	for oldName := range mappings {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := linkOrCopy(filepath.Join(absDir, oldName), filepath.Join(backupPath, oldName)); err != nil {
			return fmt.Errorf("back up %s: %w", oldName, err)
		}
	}

	data, err := json.MarshalIndent(mappings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mappings: %w", err)
	}
	if err := os.WriteFile(filepath.Join(backupPath, MappingsFileName), data, 0o644); err != nil {
		return fmt.Errorf("write mappings: %w", err)
	}

	return m.update(func(records []types.BackupRecord) []types.BackupRecord {
		return append(records, types.BackupRecord{
			Path:      backupPath,
			SourceDir: absDir,
			Timestamp: time.Now(),
		})
	})
}

// Restore puts the original files of dir back and removes the backup
func (m *Manager) Restore(ctx context.Context, dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	backupPath := filepath.Join(absDir, m.dirName)

	data, err := os.ReadFile(filepath.Join(backupPath, MappingsFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return types.ErrBackupNotFound{Directory: absDir}
	}
	if err != nil {
		return fmt.Errorf("read mappings: %w", err)
	}

	var mappings map[string]string
	if err := json.Unmarshal(data, &mappings); err != nil {
		return fmt.Errorf("parse mappings: %w", err)
	}

	for oldName, newName := range mappings {
		if err := ctx.Err(); err != nil {
			return err
		}
		if newName != oldName {
			if err := os.Remove(filepath.Join(absDir, newName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", newName, err)
			}
		}
		dst := filepath.Join(absDir, oldName)
		if _, err := os.Stat(dst); err == nil {
			continue
		}
		if err := linkOrCopy(filepath.Join(backupPath, oldName), dst); err != nil {
			return fmt.Errorf("restore %s: %w", oldName, err)
		}
	}

	return m.Clean(ctx, absDir)
}

// Clean removes the backup of one directory
func (m *Manager) Clean(ctx context.Context, dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	if err := os.RemoveAll(filepath.Join(absDir, m.dirName)); err != nil {
		return fmt.Errorf("remove backup dir: %w", err)
	}
	return m.update(func(records []types.BackupRecord) []types.BackupRecord {
		kept := records[:0]
		for _, r := range records {
			if r.SourceDir != absDir {
				kept = append(kept, r)
			}
		}
		return kept
	})
}

// CleanAll removes every registered backup
func (m *Manager) CleanAll(ctx context.Context) error {
	return m.update(func(records []types.BackupRecord) []types.BackupRecord {
		for _, r := range records {
			_ = os.RemoveAll(r.Path)
		}
		return nil
	})
}

// ListAll returns the registered backups, newest first
func (m *Manager) ListAll(ctx context.Context) ([]types.BackupRecord, error) {
	if _, err := os.Stat(filepath.Dir(m.registryPath)); errors.Is(err, fs.ErrNotExist) {
		return []types.BackupRecord{}, nil
	}
	if err := m.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock registry: %w", err)
	}
	defer m.lock.Unlock()

	records, err := m.read()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

// update applies fn to the registry while holding the exclusive lock
func (m *Manager) update(fn func([]types.BackupRecord) []types.BackupRecord) error {
	if err := os.MkdirAll(filepath.Dir(m.registryPath), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := m.lock.Lock(); err != nil {
		return fmt.Errorf("lock registry: %w", err)
	}
	defer m.lock.Unlock()

	records, err := m.read()
	if err != nil {
		return err
	}
	records = fn(records)
	if records == nil {
		records = []types.BackupRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp := m.registryPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return os.Rename(tmp, m.registryPath)
}

func (m *Manager) read() ([]types.BackupRecord, error) {
	data, err := os.ReadFile(m.registryPath)
	if errors.Is(err, fs.ErrNotExist) {
		return []types.BackupRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	var records []types.BackupRecord
	if err := json.Unmarshal(data, &records); err != nil {
		// a corrupt registry only loses the global index, not the backups
		return []types.BackupRecord{}, nil
	}
	return records, nil
}

// linkOrCopy hard links src to dst, falling back to a byte copy across
// filesystems.
func linkOrCopy(src, dst string) error {
	if err := os.Link(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
