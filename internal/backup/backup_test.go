package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mydehq/otr/internal/types"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBackupRestore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := New(t.TempDir(), "")

	writeFile(t, filepath.Join(dir, "Dragnet_49-06-03_e01.mp3"), "one")
	writeFile(t, filepath.Join(dir, "Dragnet_49-06-10_e02.mp3"), "two")

	mappings := map[string]string{
		"Dragnet_49-06-03_e01.mp3": "dragnet--1949-06-03--e01.mp3",
		"Dragnet_49-06-10_e02.mp3": "dragnet--1949-06-10--e02.mp3",
	}
	if err := m.Backup(ctx, dir, mappings); err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultDirName, MappingsFileName)); err != nil {
		t.Fatalf("mappings not written: %v", err)
	}

	for oldName, newName := range mappings {
		if err := os.Rename(filepath.Join(dir, oldName), filepath.Join(dir, newName)); err != nil {
			t.Fatal(err)
		}
	}

	records, err := m.ListAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("registry has %d records, want 1", len(records))
	}

	if err := m.Restore(ctx, dir); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for oldName, newName := range mappings {
		if _, err := os.Stat(filepath.Join(dir, oldName)); err != nil {
			t.Errorf("%s not restored", oldName)
		}
		if _, err := os.Stat(filepath.Join(dir, newName)); !os.IsNotExist(err) {
			t.Errorf("%s still present", newName)
		}
	}
	data, _ := os.ReadFile(filepath.Join(dir, "Dragnet_49-06-03_e01.mp3"))
	if string(data) != "one" {
		t.Errorf("restored content = %q", data)
	}
	if _, err := os.Stat(filepath.Join(dir, DefaultDirName)); !os.IsNotExist(err) {
		t.Error("backup dir left behind after restore")
	}

	records, _ = m.ListAll(ctx)
	if len(records) != 0 {
		t.Errorf("registry has %d records after restore", len(records))
	}
}

func TestRestoreWithoutBackup(t *testing.T) {
	m := New(t.TempDir(), "")
	err := m.Restore(context.Background(), t.TempDir())

	var nf types.ErrBackupNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("Restore = %v, want ErrBackupNotFound", err)
	}
}

func TestBackupReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := New(t.TempDir(), "")
	writeFile(t, filepath.Join(dir, "a.mp3"), "a")

	for i := 0; i < 2; i++ {
		if err := m.Backup(ctx, dir, map[string]string{"a.mp3": "b.mp3"}); err != nil {
			t.Fatal(err)
		}
	}
	records, _ := m.ListAll(ctx)
	if len(records) != 1 {
		t.Errorf("registry has %d records, want 1", len(records))
	}
}

func TestCleanAll(t *testing.T) {
	ctx := context.Background()
	m := New(t.TempDir(), ".bk")

	var dirs []string
	for i := 0; i < 3; i++ {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "x.mp3"), "x")
		if err := m.Backup(ctx, dir, map[string]string{"x.mp3": "y.mp3"}); err != nil {
			t.Fatal(err)
		}
		dirs = append(dirs, dir)
	}

	if err := m.CleanAll(ctx); err != nil {
		t.Fatal(err)
	}
	for _, dir := range dirs {
		if _, err := os.Stat(filepath.Join(dir, ".bk")); !os.IsNotExist(err) {
			t.Errorf("backup in %s not removed", dir)
		}
	}
	records, _ := m.ListAll(ctx)
	if len(records) != 0 {
		t.Errorf("registry not cleared: %v", records)
	}
}

func TestDefaultCacheRoot(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	if got := DefaultCacheRoot(); got != "/tmp/xdg-cache/otr" {
		t.Errorf("DefaultCacheRoot() = %q", got)
	}
}
