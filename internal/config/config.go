// Package config loads, validates and saves the otr configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/mydehq/otr/internal/extract"
	"github.com/mydehq/otr/internal/matcher"
	"github.com/mydehq/otr/internal/slug"
	"github.com/mydehq/otr/internal/types"
)

// Config is the whole configuration. It is loaded once per run and passed
// into constructors.
type Config struct {
	Catalog  CatalogConfig `yaml:"catalog"`
	Patterns PatternConfig `yaml:"patterns"`
	Match    MatchConfig   `yaml:"match"`
	Slug     SlugConfig    `yaml:"slug"`
	Output   OutputConfig  `yaml:"output"`
	Formats  []string      `yaml:"formats,flow"`
	Backup   BackupConfig  `yaml:"backup"`
	Tag      TagConfig     `yaml:"tag"`

	// Path is where the config was read from, empty for defaults
	Path string `yaml:"-"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

// PatternConfig holds the field regexes. Empty patterns are skipped.
type PatternConfig struct {
	Strip   string `yaml:"strip,omitempty"`
	Show    string `yaml:"show"`
	Date    string `yaml:"date"`
	Number  string `yaml:"number"`
	Episode string `yaml:"episode"`
	Narrow  bool   `yaml:"narrow"`
}

type MatchConfig struct {
	Threshold        float64 `yaml:"threshold"`
	Limit            int     `yaml:"limit"`
	CaseSensitive    bool    `yaml:"case_sensitive"`
	RelaxStep        float64 `yaml:"relax_step"`
	RelaxFloor       float64 `yaml:"relax_floor"`
	AutoSelectSingle bool    `yaml:"auto_select_single"`
}

type SlugConfig struct {
	PreserveCase bool   `yaml:"preserve_case"`
	KeepDashes   bool   `yaml:"keep_dashes"`
	Strict       bool   `yaml:"strict"`
	Custom       string `yaml:"custom,omitempty"`
	CustomSep    string `yaml:"custom_sep"`
}

type OutputConfig struct {
	Fields       []string `yaml:"fields,flow"`
	Separator    string   `yaml:"separator"`
	NumberPrefix string   `yaml:"number_prefix"`
	Padding      int      `yaml:"padding"` // 0 derives the width from the batch size
}

type BackupConfig struct {
	Enabled bool   `yaml:"enabled"`
	DirName string `yaml:"dir_name"`
}

type TagConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Patterns: PatternConfig{
			Show:    `^(.*?)[-_]\d\d-\d\d-\d\d`,
			Date:    `(\d\d-\d\d-\d\d)`,
			Number:  `[-_]e(\d+)`,
			Episode: matcher.DefaultEpisodePattern,
		},
		Match: MatchConfig{
			Threshold:        matcher.DefaultThreshold,
			Limit:            matcher.MaxCandidates,
			AutoSelectSingle: true,
		},
		Slug: SlugConfig{
			CustomSep: slug.DefaultCustomSep,
		},
		Output: OutputConfig{
			Fields:       slices.Clone(matcher.DefaultTemplate().Fields),
			Separator:    "--",
			NumberPrefix: "e",
		},
		Formats: []string{"mp3", "m4a", "mp4", "ogg", "opus", "flac", "wav", "mka"},
		Backup: BackupConfig{
			Enabled: true,
			DirName: ".otr_backup",
		},
	}
}

// Load reads the config at customPath, or the first one found in the
// standard locations. Defaults are returned when none exists.
func Load(customPath string) (*Config, error) {
	cfg := Default()

	path := customPath
	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrConfigNotFound{Path: path}
		}
		return nil, fmt.Errorf("failed to read config at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, types.ErrConfigInvalid{Path: path, Reason: err.Error()}
	}
	cfg.Path = path

	return cfg, nil
}

// Save writes cfg as YAML to path, creating parent directories
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// UserPath is where a per-user config lives
func UserPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "otr", "config.yml"), nil
}

// findConfig searches for the config file in standard locations
func findConfig() string {
	if path, err := UserPath(); err == nil {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	etcPath := "/etc/otr/config.yml"
	if _, err := os.Stat(etcPath); err == nil {
		return etcPath
	}

	return ""
}

// Validate checks everything that can be checked before a file is touched
func Validate(cfg *Config) error {
	invalid := func(format string, args ...any) error {
		return types.ErrConfigInvalid{Path: cfg.Path, Reason: fmt.Sprintf(format, args...)}
	}

	if _, err := cfg.Extractor(); err != nil {
		return invalid("%v", err)
	}
	if cfg.Match.Threshold < 0 || cfg.Match.Threshold > 1 {
		return invalid("match.threshold %v outside [0,1]", cfg.Match.Threshold)
	}
	if cfg.Match.Limit < 0 || cfg.Match.Limit > matcher.MaxCandidates {
		return invalid("match.limit %d outside 0..%d", cfg.Match.Limit, matcher.MaxCandidates)
	}
	if cfg.Match.RelaxStep < 0 || cfg.Match.RelaxStep >= 1 {
		return invalid("match.relax_step %v outside [0,1)", cfg.Match.RelaxStep)
	}
	if cfg.Match.RelaxStep > 0 && (cfg.Match.RelaxFloor < 0 || cfg.Match.RelaxFloor >= cfg.Match.Threshold) {
		return invalid("match.relax_floor %v must be below threshold %v", cfg.Match.RelaxFloor, cfg.Match.Threshold)
	}
	if cfg.Slug.CustomSep != "" && utf8.RuneCountInString(cfg.Slug.CustomSep) != 1 {
		return invalid("slug.custom_sep %q must be one character", cfg.Slug.CustomSep)
	}
	if _, err := cfg.Slugger(); err != nil {
		return err
	}
	if err := cfg.Template().Validate(); err != nil {
		return invalid("%v", err)
	}
	if cfg.Output.Padding < 0 {
		return invalid("output.padding %d is negative", cfg.Output.Padding)
	}
	return nil
}

// Extractor compiles the configured patterns
func (c *Config) Extractor() (*extract.Extractor, error) {
	return extract.Compile(map[extract.Field]string{
		extract.FieldStrip:   c.Patterns.Strip,
		extract.FieldShow:    c.Patterns.Show,
		extract.FieldDate:    c.Patterns.Date,
		extract.FieldNumber:  c.Patterns.Number,
		extract.FieldEpisode: c.Patterns.Episode,
	}, extract.WithNarrowing(c.Patterns.Narrow))
}

// EpisodeRegex compiles the episode fragment pattern, nil when unset
func (c *Config) EpisodeRegex() (*regexp.Regexp, error) {
	if c.Patterns.Episode == "" {
		return nil, nil
	}
	return regexp.Compile(c.Patterns.Episode)
}

// Slugger builds the slug normalizer, parsing custom rules
func (c *Config) Slugger() (*slug.Slugger, error) {
	rules, err := slug.ParseRules(c.Slug.Custom, c.Slug.CustomSep)
	if err != nil {
		return nil, err
	}
	return slug.New(slug.Options{
		PreserveCase: c.Slug.PreserveCase,
		KeepDashes:   c.Slug.KeepDashes,
		Strict:       c.Slug.Strict,
		Rules:        rules,
	}), nil
}

// Scorer returns the similarity scorer
func (c *Config) Scorer() matcher.Scorer {
	return matcher.Scorer{CaseSensitive: c.Match.CaseSensitive, Normalize: !c.Match.CaseSensitive}
}

// Template returns the output filename template
func (c *Config) Template() matcher.Template {
	return matcher.Template{
		Fields:       c.Output.Fields,
		Separator:    c.Output.Separator,
		NumberPrefix: c.Output.NumberPrefix,
		Padding:      c.Output.Padding,
	}
}

// IsMediaFile reports whether path has one of the configured formats
func (c *Config) IsMediaFile(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return ext != "" && slices.Contains(c.Formats, ext)
}
