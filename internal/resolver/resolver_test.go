package resolver

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mydehq/otr/internal/airdate"
	"github.com/mydehq/otr/internal/chooser"
	"github.com/mydehq/otr/internal/config"
	"github.com/mydehq/otr/internal/types"
)

type memCatalog struct {
	shows    []types.CatalogEntry
	episodes map[int][]types.EpisodeRecord
	loads    int
}

func (m *memCatalog) Shows(context.Context) ([]types.CatalogEntry, error) {
	return m.shows, nil
}

func (m *memCatalog) Episodes(_ context.Context, id int) ([]types.EpisodeRecord, error) {
	m.loads++
	return m.episodes[id], nil
}

func testCatalog() *memCatalog {
	return &memCatalog{
		shows: []types.CatalogEntry{
			{ID: 1, Title: "Dragnet"},
			{ID: 7, Title: "Gunsmoke"},
			{ID: 12, Title: "Gang Busters"},
			{ID: 20, Title: "Suspense"},
			{ID: 21, Title: "Suspense!"},
			{ID: 30, Title: "The Shadow", Aliases: []string{"Shadow, The"}},
			{ID: 40, Title: "Empty Show"},
		},
		episodes: map[int][]types.EpisodeRecord{
			1: {
				{Number: 1, Date: airdate.MustParse("49-06-03"), Titles: []string{"The Big Jolt"}},
				{Number: 2, Titles: []string{"The Big Thief", "Big Steal"}},
			},
			7: {
				{Number: 1, Date: airdate.MustParse("52-04-26"), Titles: []string{"Billy the Kid"}},
			},
			20: {{Number: 1, Titles: []string{"Sorry, Wrong Number"}}},
			21: {{Number: 1, Titles: []string{"The House in Cypress Canyon"}}},
			30: {{Number: 1, Titles: []string{"Death House Rescue"}}},
		},
	}
}

func scenarioConfig() *config.Config {
	cfg := config.Default()
	cfg.Patterns.Show = `^(.*)-\d\d-\d\d-\d\d`
	cfg.Patterns.Date = `(\d\d-\d\d-\d\d)`
	cfg.Patterns.Number = `e(\d+)`
	cfg.Patterns.Episode = `e\d\d[_-](.*)`
	cfg.Output.Padding = 2
	cfg.Match.Threshold = 0.75
	return cfg
}

func TestResolve_RegexMode(t *testing.T) {
	e, err := New(scenarioConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := e.Resolve(context.Background(), "/otr/dragnet-55-06-02-e01-big-jolt.mp3", 1)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := types.FilenameTokens{Show: "dragnet", Date: "55-06-02", Number: "01", Episode: "big-jolt"}
	if res.Tokens != want {
		t.Errorf("Tokens = %+v, want %+v", res.Tokens, want)
	}
	if res.Metadata.Date.String() != "1955-06-02" {
		t.Errorf("Date = %s, want 1955-06-02", res.Metadata.Date)
	}
	if res.Filename != "dragnet--1955-06-02--e01--big-jolt.mp3" {
		t.Errorf("Filename = %q", res.Filename)
	}
}

func TestResolve_EpisodeZero(t *testing.T) {
	e, err := New(scenarioConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		file    string
		number  bool
		outName string
	}{
		{"/otr/dragnet-49-01-01-e00-audition.mp3", true, "dragnet--1949-01-01--e00--audition.mp3"},
		{"/otr/dragnet-49-01-01-audition.mp3", false, "dragnet--1949-01-01.mp3"},
	}
	for _, tt := range tests {
		res, err := e.Resolve(context.Background(), tt.file, 1)
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", tt.file, err)
		}
		if res.Metadata.HasNumber != tt.number || res.Metadata.Number != 0 {
			t.Errorf("%s: Number = %d, HasNumber = %v", tt.file, res.Metadata.Number, res.Metadata.HasNumber)
		}
		if res.Filename != tt.outName {
			t.Errorf("Filename = %q, want %q", res.Filename, tt.outName)
		}
	}
}

func TestResolve_CatalogMode(t *testing.T) {
	cat := testCatalog()
	e, err := New(scenarioConfig(), WithCatalog(cat))
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.Resolve(context.Background(), "Dragnet-49-06-03-e01-the_big_jolt.MP3", 10)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.ShowID != 1 || res.Metadata.EpisodeTitle != "The Big Jolt" {
		t.Errorf("Resolution = %+v", res)
	}
	if res.Filename != "dragnet--1949-06-03--e01--the-big-jolt.mp3" {
		t.Errorf("Filename = %q", res.Filename)
	}

	// The catalog has no date for episode 2, so the filename date is kept.
	res, err = e.Resolve(context.Background(), "dragnet-49-06-10-e02-big-steal.mp3", 10)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Filename != "dragnet--1949-06-10--e02--big-steal.mp3" {
		t.Errorf("Filename = %q", res.Filename)
	}
	if cat.loads != 1 {
		t.Errorf("episodes loaded %d times, want 1", cat.loads)
	}
}

func TestResolve_ShowChoiceIsMemoized(t *testing.T) {
	var out strings.Builder
	c := chooser.New(chooser.TextRenderer{W: &out}, chooser.NewLinePrompter(strings.NewReader("2\n"), io.Discard))
	e, err := New(scenarioConfig(), WithCatalog(testCatalog()), WithChooser(c), WithShow("suspense"))
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range []string{"suspense-46-11-07-e01-cypress-canyon.mp3", "suspense-46-11-14-e02-cypress.mp3"} {
		res, err := e.Resolve(context.Background(), f, 2)
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", f, err)
		}
		if res.ShowID != 21 {
			t.Errorf("Resolve(%s) show = %d, want 21", f, res.ShowID)
		}
	}
	if strings.Count(out.String(), "Matches for") != 1 {
		t.Errorf("prompted more than once:\n%s", out.String())
	}
}

func TestResolve_AliasTitle(t *testing.T) {
	c := chooser.New(chooser.TextRenderer{W: io.Discard}, chooser.NewLinePrompter(strings.NewReader("abc\n3\n2\n"), io.Discard))
	e, err := New(scenarioConfig(), WithCatalog(testCatalog()), WithChooser(c))
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.Resolve(context.Background(), "the-shadow-38-10-02-e01-death-house.mp3", 1)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Metadata.ShowTitle != "Shadow, The" {
		t.Errorf("ShowTitle = %q", res.Metadata.ShowTitle)
	}
	if res.Filename != "shadow,-the--1938-10-02--e01--death-house-rescue.mp3" {
		t.Errorf("Filename = %q", res.Filename)
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		cfg  func(*config.Config)
		kind string
	}{
		{"invalid date", "dragnet-55-13-02-e01-x.mp3", nil, "InvalidDateFormat"},
		{"ambiguous without prompter", "suspense-46-11-07-e01-x.mp3", nil, "AmbiguousMatch"},
		{"empty episode list", "empty-show-50-01-01-e01-x.mp3", nil, "EmptyEpisodeList"},
		{"no match", "zzzz-50-01-01-e01-x.mp3", nil, "NoCatalogMatch"},
		{
			"high threshold without relaxation",
			"gun-smoke-52-04-26-e01-billy.mp3",
			func(c *config.Config) { c.Match.Threshold = 0.99 },
			"NoCatalogMatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := scenarioConfig()
			if tt.cfg != nil {
				tt.cfg(cfg)
			}
			e, err := New(cfg, WithCatalog(testCatalog()))
			if err != nil {
				t.Fatal(err)
			}
			_, err = e.Resolve(context.Background(), tt.file, 1)
			if got := types.Kind(err); got != tt.kind {
				t.Errorf("Resolve() error = %v (%s), want %s", err, got, tt.kind)
			}
		})
	}
}

func TestResolve_Relaxation(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Match.Threshold = 0.99
	cfg.Match.RelaxStep = 0.05
	cfg.Match.RelaxFloor = 0.9

	var events []types.Event
	e, err := New(cfg, WithCatalog(testCatalog()), WithEvents(func(ev types.Event) {
		events = append(events, ev)
	}))
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.Resolve(context.Background(), "gun-smoke-52-04-26-e01-billy-the-kid.mp3", 1)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.ShowID != 7 {
		t.Errorf("ShowID = %d, want 7", res.ShowID)
	}

	relaxed := 0
	for _, ev := range events {
		if ev.Type == types.EventWarning && strings.Contains(ev.Message, "relaxing") {
			relaxed++
		}
	}
	if relaxed == 0 {
		t.Error("no relaxation warning emitted")
	}
}

func TestResolve_MismatchIsWarning(t *testing.T) {
	e, err := New(scenarioConfig())
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Resolve(context.Background(), "random name.mp3", 1)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(res.Warnings) != 4 {
		t.Errorf("Warnings = %v, want 4", res.Warnings)
	}
	for _, w := range res.Warnings {
		var pm types.ErrPatternMismatch
		if !errors.As(w, &pm) {
			t.Errorf("warning %v is not a PatternMismatch", w)
		}
	}
	if res.Filename != ".mp3" {
		t.Errorf("Filename = %q, want only the extension", res.Filename)
	}
}
