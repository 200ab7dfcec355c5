// Package types defines custom error types for otr.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAborted is wrapped by prompts the user quit. It stops the whole batch
// instead of failing one file.
var ErrAborted = errors.New("aborted by user")

// ErrPatternMismatch indicates a field regex found nothing in a stem.
// It is a warning: the field is left empty.
type ErrPatternMismatch struct {
	Field string
	Stem  string
}

func (e ErrPatternMismatch) Error() string {
	return fmt.Sprintf("%s pattern did not match: %s", e.Field, e.Stem)
}

// ErrInvalidDateFormat indicates a date token fits none of the known shapes
type ErrInvalidDateFormat struct {
	Token string
}

func (e ErrInvalidDateFormat) Error() string {
	return fmt.Sprintf("invalid date format: %q", e.Token)
}

// ErrEmptyEpisodeList indicates a show has no title-bearing episodes
type ErrEmptyEpisodeList struct {
	ShowID int
}

func (e ErrEmptyEpisodeList) Error() string {
	if e.ShowID == 0 {
		return "episode list has no titles"
	}
	return fmt.Sprintf("show %d has no episode titles", e.ShowID)
}

// ErrInvalidCustomRule indicates a slug substitution rule with the wrong length
type ErrInvalidCustomRule struct {
	Rule string
}

func (e ErrInvalidCustomRule) Error() string {
	return fmt.Sprintf("invalid custom rule %q: must be 1 or 2 characters", e.Rule)
}

// ErrAmbiguousMatch indicates a choice was needed while running non-interactively
type ErrAmbiguousMatch struct {
	Query      string
	Candidates []MatchCandidate
}

func (e ErrAmbiguousMatch) Error() string {
	labels := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		labels[i] = fmt.Sprintf("%q (%.2f)", c.Label, c.Score)
	}
	return fmt.Sprintf("ambiguous match for %q: %s", e.Query, strings.Join(labels, ", "))
}

// ErrNoCatalogMatch indicates no catalog entry cleared the similarity threshold
type ErrNoCatalogMatch struct {
	Query     string
	Threshold float64
}

func (e ErrNoCatalogMatch) Error() string {
	return fmt.Sprintf("no catalog match for %q above %.2f", e.Query, e.Threshold)
}

// ErrShowNotFound indicates a show id is not in the catalog
type ErrShowNotFound struct {
	ID int
}

func (e ErrShowNotFound) Error() string {
	return fmt.Sprintf("show not found: %d", e.ID)
}

// ErrConfigInvalid indicates a configuration error
type ErrConfigInvalid struct {
	Path   string
	Reason string
}

func (e ErrConfigInvalid) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Path, e.Reason)
}

// ErrConfigNotFound indicates a configuration file doesn't exist
type ErrConfigNotFound struct {
	Path string
}

func (e ErrConfigNotFound) Error() string {
	return fmt.Sprintf("configuration file not found: %s", e.Path)
}

// ErrBackupNotFound indicates no backup exists for the directory
type ErrBackupNotFound struct {
	Directory string
}

func (e ErrBackupNotFound) Error() string {
	return fmt.Sprintf("no backup found for: %s", e.Directory)
}

// ErrCollision indicates two files would be renamed to the same target
type ErrCollision struct {
	Target string
	Other  string
}

func (e ErrCollision) Error() string {
	return fmt.Sprintf("target %s already claimed by %s", e.Target, e.Other)
}

// Kind names the error kind of err, looking through wrapping.
// Errors that are not engine kinds report "Error".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.As(err, new(ErrPatternMismatch)):
		return "PatternMismatch"
	case errors.As(err, new(ErrInvalidDateFormat)):
		return "InvalidDateFormat"
	case errors.As(err, new(ErrEmptyEpisodeList)):
		return "EmptyEpisodeList"
	case errors.As(err, new(ErrInvalidCustomRule)):
		return "InvalidCustomRule"
	case errors.As(err, new(ErrAmbiguousMatch)):
		return "AmbiguousMatch"
	case errors.As(err, new(ErrNoCatalogMatch)):
		return "NoCatalogMatch"
	case errors.As(err, new(ErrShowNotFound)):
		return "ShowNotFound"
	case errors.As(err, new(ErrConfigInvalid)):
		return "ConfigInvalid"
	case errors.As(err, new(ErrConfigNotFound)):
		return "ConfigNotFound"
	case errors.As(err, new(ErrBackupNotFound)):
		return "BackupNotFound"
	case errors.As(err, new(ErrCollision)):
		return "Collision"
	default:
		return "Error"
	}
}
