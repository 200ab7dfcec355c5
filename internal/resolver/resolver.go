// Package resolver runs one filename through extraction, date
// normalization, show and episode matching and filename assembly.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/mydehq/otr/internal/airdate"
	"github.com/mydehq/otr/internal/chooser"
	"github.com/mydehq/otr/internal/config"
	"github.com/mydehq/otr/internal/extract"
	"github.com/mydehq/otr/internal/matcher"
	"github.com/mydehq/otr/internal/slug"
	"github.com/mydehq/otr/internal/types"
)

const relaxEpsilon = 1e-9

type resolvedShow struct {
	entry types.CatalogEntry
	title string
	score float64
}

// Engine resolves files one at a time. Show choices and episode lists are
// cached for the lifetime of the Engine, so one show spread over many files
// is only asked about once.
type Engine struct {
	cfg       *config.Config
	catalog   types.Catalog
	chooser   *chooser.Chooser
	events    types.EventHandler
	showQuery string

	extractor *extract.Extractor
	slugger   *slug.Slugger
	scorer    matcher.Scorer
	template  matcher.Template
	episodeRe *regexp.Regexp

	shows    []types.CatalogEntry
	byQuery  map[string]*resolvedShow
	episodes map[int][]types.EpisodeRecord
}

// Option configures an Engine
type Option func(*Engine)

// WithCatalog enables catalog matching. Without it the extracted tokens are
// the metadata.
func WithCatalog(c types.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithChooser sets who settles ambiguous matches
func WithChooser(c *chooser.Chooser) Option {
	return func(e *Engine) {
		e.chooser = c
	}
}

// WithEvents sets the progress event handler
func WithEvents(h types.EventHandler) Option {
	return func(e *Engine) {
		e.events = h
	}
}

// WithShow uses query for show matching instead of the show token
func WithShow(query string) Option {
	return func(e *Engine) {
		e.showQuery = query
	}
}

// New builds an Engine from a validated config
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:      cfg,
		scorer:   cfg.Scorer(),
		template: cfg.Template(),
		byQuery:  make(map[string]*resolvedShow),
		episodes: make(map[int][]types.EpisodeRecord),
	}
	for _, opt := range opts {
		opt(e)
	}

	var err error
	if e.extractor, err = cfg.Extractor(); err != nil {
		return nil, err
	}
	if e.slugger, err = cfg.Slugger(); err != nil {
		return nil, err
	}
	if e.episodeRe, err = cfg.EpisodeRegex(); err != nil {
		return nil, err
	}
	if e.chooser == nil {
		e.chooser = chooser.New(nil, nil, chooser.WithAutoSelectSingle(cfg.Match.AutoSelectSingle))
	}
	return e, nil
}

// Resolve produces the metadata and canonical filename for file. batchSize
// is the number of files in the run and drives number padding.
func (e *Engine) Resolve(ctx context.Context, file string, batchSize int) (*types.Resolution, error) {
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	res := &types.Resolution{Source: file}
	tokens, warnings := e.extractor.Extract(stem)
	res.Tokens = tokens
	res.Warnings = warnings
	for _, w := range warnings {
		e.events.Emit(types.EventWarning, "%s: %v", base, w)
	}

	date, err := airdate.Parse(tokens.Date)
	if err != nil {
		return nil, err
	}

	meta := types.ResolvedMetadata{
		ShowTitle:    tokens.Show,
		EpisodeTitle: tokens.Episode,
		Date:         date,
		Extension:    ext,
	}
	meta.Number, meta.HasNumber = parseNumber(tokens.Number)

	if e.catalog != nil {
		if err := e.resolveFromCatalog(ctx, stem, res, &meta); err != nil {
			return nil, err
		}
	}

	res.Metadata = meta
	if res.Filename, err = e.template.Render(meta, e.slugger, batchSize); err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) resolveFromCatalog(ctx context.Context, stem string, res *types.Resolution, meta *types.ResolvedMetadata) error {
	query := e.showQuery
	if query == "" {
		query = res.Tokens.Show
	}
	if query == "" {
		query = stem
	}

	show, err := e.resolveShow(ctx, query)
	if err != nil {
		return err
	}

	episodes, err := e.loadEpisodes(ctx, show.entry.ID)
	if err != nil {
		return err
	}

	match, err := e.scorer.ResolveEpisode(episodes, stem, e.episodeRe)
	var empty types.ErrEmptyEpisodeList
	if errors.As(err, &empty) {
		return types.ErrEmptyEpisodeList{ShowID: show.entry.ID}
	}
	if err != nil {
		return err
	}

	res.ShowID = show.entry.ID
	res.Score = match.Score
	meta.ShowTitle = show.title
	meta.EpisodeTitle = match.Title
	if match.Number > 0 {
		meta.Number = match.Number
		meta.HasNumber = true
	}
	meta.Date = airdate.Or(match.Date, meta.Date)

	e.events.Emit(types.EventProgress, "%s: %s / %s (%.2f)", stem, show.title, match.Title, match.Score)
	return nil
}

// resolveShow ranks the catalog for query, relaxing the threshold when
// configured, and asks the chooser to settle ties.
func (e *Engine) resolveShow(ctx context.Context, query string) (*resolvedShow, error) {
	key := strings.ToLower(matcher.NormalizeTitle(query))
	if show, ok := e.byQuery[key]; ok {
		return show, nil
	}

	if e.shows == nil {
		shows, err := e.catalog.Shows(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		e.shows = shows
	}

	m := e.cfg.Match
	threshold := m.Threshold
	var candidates []types.MatchCandidate
	for {
		candidates = e.scorer.Rank(query, e.shows, threshold, m.Limit)
		if len(candidates) > 0 {
			break
		}
		next := threshold - m.RelaxStep
		if m.RelaxStep <= 0 || next < m.RelaxFloor-relaxEpsilon {
			return nil, types.ErrNoCatalogMatch{Query: query, Threshold: threshold}
		}
		threshold = next
		e.events.Emit(types.EventWarning, "no show matched %q, relaxing threshold to %.2f", query, threshold)
	}

	chosen, err := e.chooser.Choose(query, "Choose a show", candidates)
	if err != nil {
		return nil, err
	}

	var entry types.CatalogEntry
	for _, s := range e.shows {
		if s.ID == chosen.RefID {
			entry = s
			break
		}
	}

	title, err := e.chooser.ChooseTitle(entry)
	if err != nil {
		return nil, err
	}

	show := &resolvedShow{entry: entry, title: title, score: chosen.Score}
	e.byQuery[key] = show
	return show, nil
}

func (e *Engine) loadEpisodes(ctx context.Context, showID int) ([]types.EpisodeRecord, error) {
	if eps, ok := e.episodes[showID]; ok {
		return eps, nil
	}
	eps, err := e.catalog.Episodes(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to load episodes of show %d: %w", showID, err)
	}
	e.episodes[showID] = eps
	return eps, nil
}

// parseNumber reads an episode number token. Zero is a real episode.
func parseNumber(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
