package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mydehq/otr/internal/chooser"
	"github.com/mydehq/otr/internal/config"
	"github.com/mydehq/otr/internal/types"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "catalog")
	cfg.Output.Padding = 2
	return cfg
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.mp3")
	touch(t, dir, "a.MP3")
	touch(t, dir, "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "sub.mp3"), 0o755); err != nil {
		t.Fatal(err)
	}
	loose := touch(t, t.TempDir(), "readme.txt")

	files, err := ExpandFiles([]string{dir, loose}, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.MP3"), filepath.Join(dir, "b.mp3"), loose}
	if strings.Join(files, "|") != strings.Join(want, "|") {
		t.Errorf("ExpandFiles() = %v, want %v", files, want)
	}

	if _, err := ExpandFiles([]string{filepath.Join(dir, "missing")}, config.Default()); err == nil {
		t.Error("missing path should fail")
	}
}

func TestRenameRegexEditAndUndo(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cache := t.TempDir()
	file := touch(t, dir, "Dragnet_55-06-02_e01_Big_Jolt.mp3")
	cfg := testConfig(t)

	ops, err := Rename(ctx, []string{file}, WithConfigValue(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if ops[0].Status != types.StatusPending {
		t.Fatalf("view mode op = %+v", ops[0])
	}
	if _, err := os.Stat(file); err != nil {
		t.Fatal("view mode must not rename")
	}

	ops, err = Rename(ctx, []string{file}, WithConfigValue(cfg), WithEdit(), WithCacheRoot(cache))
	if err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "dragnet--1955-06-02--e01--big-jolt.mp3")
	if ops[0].Status != types.StatusSuccess || ops[0].TargetPath != target {
		t.Fatalf("edit op = %+v", ops[0])
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("target missing: %v", err)
	}

	records, err := Backups(ctx, WithConfigValue(cfg), WithCacheRoot(cache))
	if err != nil || len(records) != 1 {
		t.Fatalf("Backups() = %v, %v", records, err)
	}

	if err := Undo(ctx, dir, WithConfigValue(cfg), WithCacheRoot(cache)); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if _, err := os.Stat(file); err != nil {
		t.Error("original not restored")
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("renamed file left behind")
	}
}

func TestRenameFuzzyWithImportedCatalog(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Match.Threshold = 0.75

	page := filepath.Join(t.TempDir(), "log.html")
	html := `<table>
<tr><td>1</td><td>49-06-03</td><td>The Big Jolt</td></tr>
<tr><td>2</td><td>49-06-10</td><td>The Big Steal</td></tr>
</table>`
	if err := os.WriteFile(page, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := CatalogImport(ctx, page, types.CatalogEntry{ID: 1, Title: "Dragnet"}, WithConfigValue(cfg))
	if err != nil || n != 2 {
		t.Fatalf("CatalogImport() = %d, %v", n, err)
	}
	if _, err := CatalogImport(ctx, page, types.CatalogEntry{ID: 1, Title: "Dragnet"}, WithConfigValue(cfg)); err == nil {
		t.Error("re-import without force should fail")
	}

	list, err := CatalogList(ctx, WithConfigValue(cfg))
	if err != nil || len(list) != 1 || list[0].EpisodeCount != 2 {
		t.Fatalf("CatalogList() = %+v, %v", list, err)
	}

	dir := t.TempDir()
	file := touch(t, dir, "dragnet_49-06-10_e02_big_steel.mp3")
	ops, err := Rename(ctx, []string{file}, WithConfigValue(cfg), WithFuzzy(),
		WithChooser(chooser.New(nil, nil, chooser.WithNonInteractive(true))))
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(ops[0].TargetPath); got != "dragnet--1949-06-10--e02--the-big-steal.mp3" {
		t.Errorf("target = %q (op %+v)", got, ops[0])
	}

	if err := CatalogDelete(ctx, 1, WithConfigValue(cfg)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := CatalogInfo(ctx, 1, WithConfigValue(cfg)); types.Kind(err) != "ShowNotFound" {
		t.Errorf("CatalogInfo after delete = %v", err)
	}
}

func TestSlug(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	file := touch(t, dir, "Budget (Nov 3).CSV")
	cfg := testConfig(t)
	cfg.Slug.Custom = "),("

	ops, err := Slug(ctx, []string{file}, WithConfigValue(cfg), WithEdit(), WithNoBackup())
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "budget-nov-3.csv")
	if ops[0].Status != types.StatusSuccess || ops[0].TargetPath != want {
		t.Fatalf("op = %+v", ops[0])
	}
	if _, err := os.Stat(want); err != nil {
		t.Error("slugged file missing")
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otr", "config.yml")
	got, err := Init(path, config.Default())
	if err != nil || got != path {
		t.Fatalf("Init() = %q, %v", got, err)
	}
	if _, err := Init(path, config.Default()); err == nil {
		t.Error("second Init without force should fail")
	}
	if _, err := Init(path, config.Default(), WithForce()); err != nil {
		t.Errorf("Init with force: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Errorf("written config does not load: %v", err)
	}
}

func TestTagReportsPerFileFailures(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		touch(t, dir, "Dragnet_55-06-02_e01_Big_Jolt.ogg"),
		touch(t, dir, "Dragnet_55-13-02_e02_Bad_Date.ogg"),
	}

	var events []types.Event
	n, err := Tag(context.Background(), files, WithConfigValue(testConfig(t)),
		WithEvents(func(e types.Event) { events = append(events, e) }))
	if n != 1 {
		t.Errorf("tagged %d files, want 1", n)
	}
	if err == nil || !strings.Contains(err.Error(), "Bad_Date") {
		t.Errorf("Tag() error = %v, want one naming the bad file", err)
	}
	if len(events) != 2 || events[1].Type != types.EventError {
		t.Errorf("events = %+v", events)
	}
}

func TestRenameDeclinedConfirmLeavesFiles(t *testing.T) {
	dir := t.TempDir()
	file := touch(t, dir, "Dragnet_55-06-02_e01_Big_Jolt.mp3")

	var seen int
	ops, err := Rename(context.Background(), []string{file}, WithConfigValue(testConfig(t)), WithEdit(), WithNoBackup(),
		WithConfirm(func(ops []types.RenameOperation) (bool, error) {
			seen = len(ops)
			return false, nil
		}))
	if err != nil {
		t.Fatal(err)
	}
	if seen != 1 || ops[0].Status != types.StatusPending {
		t.Errorf("seen = %d, op = %+v", seen, ops[0])
	}
	if _, err := os.Stat(file); err != nil {
		t.Error("declined plan renamed the file")
	}
}

type quittingPrompter struct{ asked int }

func (p *quittingPrompter) Prompt(string) (string, error) {
	p.asked++
	return "", fmt.Errorf("user quit: %w", types.ErrAborted)
}

func TestTagStopsWhenUserQuits(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	page := filepath.Join(t.TempDir(), "log.html")
	html := `<table><tr><td>1</td><td>49-06-03</td><td>The Big Jolt</td></tr></table>`
	if err := os.WriteFile(page, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}
	show := types.CatalogEntry{ID: 1, Title: "Dragnet", Aliases: []string{"Dragnet (1949)"}}
	if _, err := CatalogImport(ctx, page, show, WithConfigValue(cfg)); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	files := []string{
		touch(t, dir, "dragnet_49-06-03_e01_big_jolt.mp3"),
		touch(t, dir, "dragnet_49-06-10_e02_big_steal.mp3"),
	}

	p := &quittingPrompter{}
	var errEvents int
	n, err := Tag(ctx, files, WithConfigValue(cfg), WithFuzzy(), WithChooser(chooser.New(nil, p)),
		WithEvents(func(e types.Event) {
			if e.Type == types.EventError {
				errEvents++
			}
		}))
	if !errors.Is(err, types.ErrAborted) {
		t.Fatalf("Tag() error = %v, want ErrAborted", err)
	}
	if n != 0 || p.asked != 1 || errEvents != 0 {
		t.Errorf("tagged = %d, asked = %d, error events = %d; want 0, 1, 0", n, p.asked, errEvents)
	}
}
