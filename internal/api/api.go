// Package api implements the otr operations. It is used by both the CLI and
// the public library package.
package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mydehq/otr/internal/backup"
	"github.com/mydehq/otr/internal/catalog"
	"github.com/mydehq/otr/internal/chooser"
	"github.com/mydehq/otr/internal/config"
	"github.com/mydehq/otr/internal/importer"
	"github.com/mydehq/otr/internal/renamer"
	"github.com/mydehq/otr/internal/resolver"
	"github.com/mydehq/otr/internal/slug"
	"github.com/mydehq/otr/internal/tagger"
	"github.com/mydehq/otr/internal/types"
	"github.com/mydehq/otr/internal/version"
)

// Option is a functional option for the operations in this package
type Option func(*Options)

// Options holds per-call settings
type Options struct {
	ConfigPath  string
	Config      *config.Config
	CatalogPath string
	Edit        bool
	NoBackup    bool
	NoTag       bool
	Fuzzy       bool
	Show        string
	Force       bool
	Events      types.EventHandler
	Chooser     *chooser.Chooser
	CacheRoot   string
	Confirm     ConfirmFunc
}

// ConfirmFunc sees the plan before it is applied. Returning false leaves
// every file untouched.
type ConfirmFunc func(ops []types.RenameOperation) (bool, error)

// WithConfig loads the config from path instead of the standard locations
func WithConfig(path string) Option {
	return func(o *Options) { o.ConfigPath = path }
}

// WithConfigValue uses an already loaded config, typically one the CLI has
// overridden with flags.
func WithConfigValue(cfg *config.Config) Option {
	return func(o *Options) { o.Config = cfg }
}

// WithCatalog overrides the catalog location
func WithCatalog(path string) Option {
	return func(o *Options) { o.CatalogPath = path }
}

// WithEdit applies the planned renames instead of only reporting them
func WithEdit() Option {
	return func(o *Options) { o.Edit = true }
}

// WithNoBackup skips the backup before renaming
func WithNoBackup() Option {
	return func(o *Options) { o.NoBackup = true }
}

// WithNoTag skips tag writing even when the config enables it
func WithNoTag() Option {
	return func(o *Options) { o.NoTag = true }
}

// WithFuzzy matches shows and episodes against the catalog
func WithFuzzy() Option {
	return func(o *Options) { o.Fuzzy = true }
}

// WithShow matches every file against this show name
func WithShow(name string) Option {
	return func(o *Options) { o.Show = name }
}

// WithForce lets CatalogImport replace an existing show and Init replace
// an existing config file
func WithForce() Option {
	return func(o *Options) { o.Force = true }
}

// WithEvents sets the progress event handler
func WithEvents(h types.EventHandler) Option {
	return func(o *Options) { o.Events = h }
}

// WithChooser sets who settles ambiguous matches
func WithChooser(c *chooser.Chooser) Option {
	return func(o *Options) { o.Chooser = c }
}

// WithConfirm asks fn before applying a plan with WithEdit
func WithConfirm(fn ConfirmFunc) Option {
	return func(o *Options) { o.Confirm = fn }
}

// WithCacheRoot moves the backup registry, mostly for tests
func WithCacheRoot(dir string) Option {
	return func(o *Options) { o.CacheRoot = dir }
}

var defaultEvents types.EventHandler

// SetDefaultEventHandler sets the handler used when WithEvents is not given
func SetDefaultEventHandler(h types.EventHandler) {
	defaultEvents = h
}

func newOptions(opts []Option) *Options {
	o := &Options{Events: defaultEvents}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Options) config() (*config.Config, error) {
	if o.Config != nil {
		return o.Config, config.Validate(o.Config)
	}
	return LoadConfig(o.ConfigPath)
}

func (o *Options) catalogPath(cfg *config.Config) string {
	if o.CatalogPath != "" {
		return o.CatalogPath
	}
	return cfg.Catalog.Path
}

func (o *Options) backups(cfg *config.Config) *backup.Manager {
	root := o.CacheRoot
	if root == "" {
		root = backup.DefaultCacheRoot()
	}
	return backup.New(root, cfg.Backup.DirName)
}

// LoadConfig loads and validates the configuration
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ExpandFiles turns CLI arguments into a file list. Directories contribute
// their media files, sorted by name. Files are kept as given.
func ExpandFiles(args []string, cfg *config.Config) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%s does not exist", arg)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && cfg.IsMediaFile(e.Name()) {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// Rename plans canonical names for files and, with WithEdit, applies them.
// Without WithFuzzy the extracted tokens are used as they are.
func Rename(ctx context.Context, files []string, opts ...Option) ([]types.RenameOperation, error) {
	o := newOptions(opts)
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	engine, done, err := newEngine(o, cfg)
	if err != nil {
		return nil, err
	}
	defer done()
	return run(ctx, o, cfg, engine, files)
}

// Tag resolves files like Rename and writes the result into their tags
// without renaming. It returns how many files were tagged; per-file
// failures are reported as events and joined into the error.
func Tag(ctx context.Context, files []string, opts ...Option) (int, error) {
	o := newOptions(opts)
	cfg, err := o.config()
	if err != nil {
		return 0, err
	}
	engine, done, err := newEngine(o, cfg)
	if err != nil {
		return 0, err
	}
	defer done()

	tg := tagger.New()
	var errs []error
	tagged := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return tagged, err
		}
		base := filepath.Base(file)
		res, err := engine.Resolve(ctx, file, len(files))
		if errors.Is(err, types.ErrAborted) {
			return tagged, err
		}
		if err == nil {
			err = tg.TagFile(ctx, file, &res.Metadata)
		}
		if err != nil {
			o.Events.Emit(types.EventError, "%s: %s: %v", base, types.Kind(err), err)
			errs = append(errs, fmt.Errorf("%s: %w", base, err))
			continue
		}
		tagged++
		o.Events.Emit(types.EventSuccess, "tagged %s", base)
	}
	return tagged, errors.Join(errs...)
}

// newEngine builds the resolver for o. The returned func releases the
// catalog and must always be called.
func newEngine(o *Options, cfg *config.Config) (*resolver.Engine, func(), error) {
	done := func() {}
	engineOpts := []resolver.Option{resolver.WithEvents(o.Events), resolver.WithShow(o.Show)}
	if o.Chooser != nil {
		engineOpts = append(engineOpts, resolver.WithChooser(o.Chooser))
	}
	if o.Fuzzy {
		repo, err := catalog.Open(o.catalogPath(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		done = func() { repo.Close() }
		engineOpts = append(engineOpts, resolver.WithCatalog(repo))
	}

	engine, err := resolver.New(cfg, engineOpts...)
	if err != nil {
		done()
		return nil, nil, err
	}
	return engine, done, nil
}

// run plans with res and applies when editing
func run(ctx context.Context, o *Options, cfg *config.Config, res renamer.Resolver, files []string) ([]types.RenameOperation, error) {
	rOpts := []renamer.Option{renamer.WithEvents(o.Events)}
	if cfg.Backup.Enabled && !o.NoBackup {
		rOpts = append(rOpts, renamer.WithBackup(o.backups(cfg)))
	}
	if cfg.Tag.Enabled && !o.NoTag {
		rOpts = append(rOpts, renamer.WithTagger(tagger.New()))
	}
	r := renamer.New(res, rOpts...)

	ops, err := r.Plan(ctx, files)
	if err != nil || !o.Edit {
		return ops, err
	}
	if o.Confirm != nil {
		ok, err := o.Confirm(ops)
		if err != nil || !ok {
			return ops, err
		}
	}
	return ops, r.Apply(ctx, ops)
}

// slugResolver names a file by slugging its whole base name
type slugResolver struct {
	slugger *slug.Slugger
}

func (s slugResolver) Resolve(_ context.Context, file string, _ int) (*types.Resolution, error) {
	return &types.Resolution{Source: file, Filename: s.slugger.Slug(filepath.Base(file))}, nil
}

// Slug plans slugged names for files using cfg's slug settings and, with
// WithEdit, renames them. Tags are never written.
func Slug(ctx context.Context, files []string, opts ...Option) ([]types.RenameOperation, error) {
	o := newOptions(opts)
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	slugger, err := cfg.Slugger()
	if err != nil {
		return nil, err
	}
	o.NoTag = true
	return run(ctx, o, cfg, slugResolver{slugger: slugger}, files)
}

// Undo restores the originals of the last applied run in dir
func Undo(ctx context.Context, dir string, opts ...Option) error {
	o := newOptions(opts)
	cfg, err := o.config()
	if err != nil {
		return err
	}
	if err := o.backups(cfg).Restore(ctx, dir); err != nil {
		return fmt.Errorf("failed to undo rename: %w", err)
	}
	return nil
}

// Clean removes the backup of dir
func Clean(ctx context.Context, dir string, opts ...Option) error {
	o := newOptions(opts)
	cfg, err := o.config()
	if err != nil {
		return err
	}
	return o.backups(cfg).Clean(ctx, dir)
}

// CleanAll removes every registered backup
func CleanAll(ctx context.Context, opts ...Option) error {
	o := newOptions(opts)
	cfg, err := o.config()
	if err != nil {
		return err
	}
	return o.backups(cfg).CleanAll(ctx)
}

// Backups lists the registered backups, newest first
func Backups(ctx context.Context, opts ...Option) ([]types.BackupRecord, error) {
	o := newOptions(opts)
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return o.backups(cfg).ListAll(ctx)
}

func openCatalog(o *Options) (types.CatalogRepository, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	return catalog.Open(o.catalogPath(cfg))
}

// CatalogPath returns the catalog location in use
func CatalogPath(opts ...Option) (string, error) {
	repo, err := openCatalog(newOptions(opts))
	if err != nil {
		return "", err
	}
	defer repo.Close()
	return repo.Path(), nil
}

// CatalogList summarises every show in the catalog
func CatalogList(ctx context.Context, opts ...Option) ([]catalog.Summary, error) {
	repo, err := openCatalog(newOptions(opts))
	if err != nil {
		return nil, err
	}
	defer repo.Close()
	return catalog.Summarize(ctx, repo)
}

// CatalogShows returns every show with its aliases
func CatalogShows(ctx context.Context, opts ...Option) ([]types.CatalogEntry, error) {
	repo, err := openCatalog(newOptions(opts))
	if err != nil {
		return nil, err
	}
	defer repo.Close()
	return repo.Shows(ctx)
}

// CatalogInfo returns one show and its episodes
func CatalogInfo(ctx context.Context, id int, opts ...Option) (*types.CatalogEntry, []types.EpisodeRecord, error) {
	repo, err := openCatalog(newOptions(opts))
	if err != nil {
		return nil, nil, err
	}
	defer repo.Close()

	show, err := catalog.Find(ctx, repo, id)
	if err != nil {
		return nil, nil, err
	}
	episodes, err := repo.Episodes(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return show, episodes, nil
}

// CatalogImport reads an episode log from a file or URL and stores it
// under show. An existing show with the same id is only replaced with
// WithForce. It returns the number of episodes stored.
func CatalogImport(ctx context.Context, source string, show types.CatalogEntry, opts ...Option) (int, error) {
	o := newOptions(opts)
	if show.ID <= 0 {
		return 0, fmt.Errorf("show id must be positive, got %d", show.ID)
	}
	if show.Title == "" {
		return 0, fmt.Errorf("show title is required")
	}

	repo, err := openCatalog(o)
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	if existing, err := catalog.Find(ctx, repo, show.ID); err == nil && !o.Force {
		return 0, fmt.Errorf("show %d (%s) already exists (use force to replace)", show.ID, existing.Title)
	}

	o.Events.Emit(types.EventProgress, "reading %s", source)
	episodes, err := importer.New().Import(ctx, source)
	if err != nil {
		return 0, err
	}
	if len(episodes) == 0 {
		return 0, fmt.Errorf("no episodes found in %s", source)
	}
	if err := repo.Save(ctx, show, episodes); err != nil {
		return 0, fmt.Errorf("failed to save show %d: %w", show.ID, err)
	}
	return len(episodes), nil
}

// CatalogDelete removes a show and its episodes
func CatalogDelete(ctx context.Context, id int, opts ...Option) error {
	repo, err := openCatalog(newOptions(opts))
	if err != nil {
		return err
	}
	defer repo.Close()
	return repo.Delete(ctx, id)
}

// Init writes cfg to path, or to the per-user location when path is
// empty. An existing file is only replaced with WithForce.
func Init(path string, cfg *config.Config, opts ...Option) (string, error) {
	o := newOptions(opts)
	if path == "" {
		var err error
		if path, err = config.UserPath(); err != nil {
			return "", err
		}
	}
	if _, err := os.Stat(path); err == nil && !o.Force {
		return "", fmt.Errorf("config already exists at %s (use force to overwrite)", path)
	}
	if err := config.Validate(cfg); err != nil {
		return "", err
	}
	if err := config.Save(path, cfg); err != nil {
		return "", err
	}
	return path, nil
}

// Version returns the build version
func Version() string {
	return version.Get()
}
