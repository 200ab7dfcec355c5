// Package types defines core domain types used throughout otr.
package types

import (
	"fmt"
	"time"
)

// FilenameTokens holds the raw substrings pulled out of one filename stem.
// Any field may be empty when its pattern did not match.
type FilenameTokens struct {
	Show    string `json:"show"`
	Date    string `json:"date"`
	Number  string `json:"number"`
	Episode string `json:"episode"`
}

// Precision marks how much of a CanonicalDate is actually known
type Precision int

const (
	PrecisionUnknown Precision = iota
	PrecisionYear
	PrecisionMonth
	PrecisionDay
)

func (p Precision) String() string {
	switch p {
	case PrecisionYear:
		return "year"
	case PrecisionMonth:
		return "month"
	case PrecisionDay:
		return "day"
	default:
		return "unknown"
	}
}

// CanonicalDate is a broadcast date with the precision it is known to.
// Components below the precision are zero.
type CanonicalDate struct {
	Year      int       `json:"year,omitempty"`
	Month     int       `json:"month,omitempty"`
	Day       int       `json:"day,omitempty"`
	Precision Precision `json:"precision"`
}

// UnknownDate is the sentinel for a date nobody knows
var UnknownDate = CanonicalDate{Precision: PrecisionUnknown}

// IsKnown reports whether any part of the date is known
func (d CanonicalDate) IsKnown() bool {
	return d.Precision != PrecisionUnknown
}

// String renders the date only as far as its precision allows
func (d CanonicalDate) String() string {
	switch d.Precision {
	case PrecisionDay:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	case PrecisionMonth:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	case PrecisionYear:
		return fmt.Sprintf("%04d", d.Year)
	default:
		return ""
	}
}

// CatalogEntry is one known show. Identity is ID.
type CatalogEntry struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Aliases []string `json:"aliases,omitempty"`
}

// Titles returns the primary title followed by every distinct alias
func (c *CatalogEntry) Titles() []string {
	titles := []string{c.Title}
	seen := map[string]bool{c.Title: true}
	for _, a := range c.Aliases {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		titles = append(titles, a)
	}
	return titles
}

// EpisodeRecord is one episode of a show; it may carry several known titles
type EpisodeRecord struct {
	Number int           `json:"number"`
	Date   CanonicalDate `json:"date"`
	Titles []string      `json:"titles"`
}

// MatchCandidate is a scored comparison result used to pick a winner
type MatchCandidate struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
	RefID int     `json:"ref_id"`
}

// EpisodeMatch is the best scoring title variant of a show's episode list
type EpisodeMatch struct {
	Title  string        `json:"title"`
	Number int           `json:"number"`
	Date   CanonicalDate `json:"date"`
	Score  float64       `json:"score"`
}

// ResolvedMetadata is the terminal output of the engine for one file.
// HasNumber tells an episode 0 apart from no number at all.
type ResolvedMetadata struct {
	ShowTitle    string        `json:"show_title"`
	EpisodeTitle string        `json:"episode_title"`
	Date         CanonicalDate `json:"date"`
	Number       int           `json:"number,omitempty"`
	HasNumber    bool          `json:"has_number,omitempty"`
	Extension    string        `json:"extension"`
}

// Resolution is everything the engine learned about one file
type Resolution struct {
	Source   string           `json:"source"`
	Tokens   FilenameTokens   `json:"tokens"`
	Metadata ResolvedMetadata `json:"metadata"`
	ShowID   int              `json:"show_id,omitempty"`
	Score    float64          `json:"score,omitempty"`
	Filename string           `json:"filename"`
	Warnings []error          `json:"-"`
}

// OperationStatus represents the status of a rename operation
type OperationStatus string

const (
	StatusPending OperationStatus = "pending"
	StatusSuccess OperationStatus = "success"
	StatusSkipped OperationStatus = "skipped"
	StatusFailed  OperationStatus = "failed"
)

// RenameOperation represents a planned or completed file rename
type RenameOperation struct {
	SourcePath string            `json:"source_path"`
	TargetPath string            `json:"target_path"`
	Metadata   *ResolvedMetadata `json:"metadata,omitempty"`
	Status     OperationStatus   `json:"status"`
	Error      string            `json:"error,omitempty"`
	Kind       string            `json:"kind,omitempty"`
}

// BackupRecord tracks a backup in the global registry
type BackupRecord struct {
	Path      string    `json:"path"`       // Full path to backup dir
	SourceDir string    `json:"source_dir"` // Original directory
	Timestamp time.Time `json:"timestamp"`
}

// EventType represents the type of progress event
type EventType string

const (
	EventInfo     EventType = "info"
	EventProgress EventType = "progress"
	EventSuccess  EventType = "success"
	EventWarning  EventType = "warning"
	EventError    EventType = "error"
)

// Event represents a progress event during operations
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message"`
	Data    any       `json:"data,omitempty"`
}

// EventHandler receives progress events during operations
type EventHandler func(Event)

// Emit calls h when it is set
func (h EventHandler) Emit(t EventType, format string, args ...any) {
	if h == nil {
		return
	}
	h(Event{Type: t, Message: fmt.Sprintf(format, args...)})
}
