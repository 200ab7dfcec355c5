package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mydehq/otr/internal/airdate"
	"github.com/mydehq/otr/internal/types"
)

func backends(t *testing.T) map[string]types.CatalogRepository {
	t.Helper()
	dir := t.TempDir()

	jsonRepo, err := Open(filepath.Join(dir, "catalog"))
	if err != nil {
		t.Fatalf("Open(json) error = %v", err)
	}
	sqliteRepo, err := Open(filepath.Join(dir, "catalog.db"))
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	t.Cleanup(func() { sqliteRepo.Close() })

	return map[string]types.CatalogRepository{"json": jsonRepo, "sqlite": sqliteRepo}
}

func TestOpen_PicksBackend(t *testing.T) {
	repos := backends(t)
	if _, ok := repos["json"].(*JSONRepository); !ok {
		t.Errorf("directory path opened %T", repos["json"])
	}
	if _, ok := repos["sqlite"].(*SQLiteRepository); !ok {
		t.Errorf(".db path opened %T", repos["sqlite"])
	}
}

func TestRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	show := types.CatalogEntry{ID: 7, Title: "Gunsmoke", Aliases: []string{"Gun Smoke"}}
	episodes := []types.EpisodeRecord{
		{Number: 1, Date: airdate.MustParse("52-04-26"), Titles: []string{"Billy the Kid"}},
		{Number: 2, Date: airdate.MustParse("52-05"), Titles: []string{"Ben Thompson", "Ben Thompson Returns"}},
		{Number: 3, Titles: nil},
	}

	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := repo.Save(ctx, types.CatalogEntry{ID: 12, Title: "Gang Busters"}, nil); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if err := repo.Save(ctx, show, episodes); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			shows, err := repo.Shows(ctx)
			if err != nil {
				t.Fatalf("Shows() error = %v", err)
			}
			if len(shows) != 2 {
				t.Fatalf("Shows() = %+v, want 2 shows", shows)
			}

			got, err := Find(ctx, repo, 7)
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}
			if got.Title != "Gunsmoke" || len(got.Aliases) != 1 || got.Aliases[0] != "Gun Smoke" {
				t.Errorf("Find() = %+v", got)
			}

			eps, err := repo.Episodes(ctx, 7)
			if err != nil {
				t.Fatalf("Episodes() error = %v", err)
			}
			if len(eps) != 3 {
				t.Fatalf("Episodes() = %+v, want 3", eps)
			}
			if eps[1].Date.String() != "1952-05" || len(eps[1].Titles) != 2 || eps[1].Titles[1] != "Ben Thompson Returns" {
				t.Errorf("episode 2 = %+v", eps[1])
			}
			if eps[2].Date.IsKnown() || len(eps[2].Titles) != 0 {
				t.Errorf("episode 3 = %+v", eps[2])
			}

			// Saving again replaces rather than appends.
			if err := repo.Save(ctx, show, episodes[:1]); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if eps, _ := repo.Episodes(ctx, 7); len(eps) != 1 {
				t.Errorf("after resave Episodes() = %+v, want 1", eps)
			}

			if err := repo.Delete(ctx, 7); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			var nf types.ErrShowNotFound
			if err := repo.Delete(ctx, 7); !errors.As(err, &nf) {
				t.Errorf("second Delete() error = %v, want ErrShowNotFound", err)
			}
			if _, err := Find(ctx, repo, 7); !errors.As(err, &nf) {
				t.Errorf("Find() after delete error = %v", err)
			}
		})
	}
}

func TestJSONRepository_LegacyKeys(t *testing.T) {
	dir := t.TempDir()
	legacy := `[{"ptitle": "Dragnet", "idp": "42"}, {"title": "The Shadow", "id": 9}]`
	if err := os.WriteFile(filepath.Join(dir, showsFile), []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, episodesDir), 0755); err != nil {
		t.Fatal(err)
	}
	bare := `[{"number": 1, "date": "49-06-03", "titles": ["The Big Jolt"]}]`
	if err := os.WriteFile(filepath.Join(dir, episodesDir, "42.json"), []byte(bare), 0644); err != nil {
		t.Fatal(err)
	}

	repo, err := OpenJSON(dir)
	if err != nil {
		t.Fatal(err)
	}
	shows, err := repo.Shows(context.Background())
	if err != nil {
		t.Fatalf("Shows() error = %v", err)
	}
	if len(shows) != 2 || shows[0].ID != 42 || shows[0].Title != "Dragnet" || shows[1].ID != 9 {
		t.Errorf("Shows() = %+v", shows)
	}

	eps, err := repo.Episodes(context.Background(), 42)
	if err != nil {
		t.Fatalf("Episodes() error = %v", err)
	}
	if len(eps) != 1 || eps[0].Date.String() != "1949-06-03" {
		t.Errorf("Episodes() = %+v", eps)
	}

	if eps, err := repo.Episodes(context.Background(), 9); err != nil || eps != nil {
		t.Errorf("missing episode file = %v, %v", eps, err)
	}
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenJSON(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	repo.Save(ctx, types.CatalogEntry{ID: 1, Title: "Suspense", Aliases: []string{"Suspense!"}},
		[]types.EpisodeRecord{{Number: 1, Titles: []string{"Sorry, Wrong Number"}}})

	got, err := Summarize(ctx, repo)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(got) != 1 || got[0].EpisodeCount != 1 || got[0].Aliases != 1 {
		t.Errorf("Summarize() = %+v", got)
	}
}

func TestIsSQLite(t *testing.T) {
	tests := map[string]bool{
		"catalog.db":      true,
		"x/y.SQLITE":      true,
		"a.sqlite3":       true,
		"catalog":         false,
		"catalog.json.d/": false,
	}
	for path, want := range tests {
		if got := IsSQLite(path); got != want {
			t.Errorf("IsSQLite(%q) = %v, want %v", path, got, want)
		}
	}
}
