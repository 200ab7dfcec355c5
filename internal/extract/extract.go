// Package extract pulls raw show, date, number and episode tokens out of a
// filename stem with a configurable set of regular expressions.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mydehq/otr/internal/types"
)

// Field names a token the extractor knows how to fill
type Field string

const (
	FieldStrip   Field = "strip"
	FieldShow    Field = "show"
	FieldDate    Field = "date"
	FieldNumber  Field = "number"
	FieldEpisode Field = "episode"
)

// order is the fixed extraction order
var order = map[Field]int{
	FieldStrip:   0,
	FieldShow:    1,
	FieldDate:    2,
	FieldNumber:  3,
	FieldEpisode: 4,
}

// Rule binds one field to the regex that extracts it
type Rule struct {
	Field Field
	Regex *regexp.Regexp
}

// Extractor applies an ordered set of rules to a stem
type Extractor struct {
	rules  []Rule
	narrow bool
}

// Option configures an Extractor
type Option func(*Extractor)

// WithNarrowing removes each matched span from the working string before the
// next field is extracted.
func WithNarrowing(narrow bool) Option {
	return func(e *Extractor) {
		e.narrow = narrow
	}
}

// New builds an Extractor, sorting rules into strip, show, date, number,
// episode order. Unknown fields and duplicates are rejected.
func New(rules []Rule, opts ...Option) (*Extractor, error) {
	seen := make(map[Field]bool, len(rules))
	sorted := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if _, ok := order[r.Field]; !ok {
			return nil, fmt.Errorf("unknown pattern field %q", r.Field)
		}
		if seen[r.Field] {
			return nil, fmt.Errorf("duplicate pattern field %q", r.Field)
		}
		if r.Regex == nil {
			continue
		}
		seen[r.Field] = true
		sorted = append(sorted, r)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return order[sorted[i].Field] < order[sorted[j].Field]
	})

	e := &Extractor{rules: sorted}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Compile builds an Extractor from field -> expression strings. Empty
// expressions are skipped.
func Compile(patterns map[Field]string, opts ...Option) (*Extractor, error) {
	rules := make([]Rule, 0, len(patterns))
	for field, expr := range patterns {
		if expr == "" {
			continue
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s pattern %q: %w", field, expr, err)
		}
		rules = append(rules, Rule{Field: field, Regex: re})
	}
	return New(rules, opts...)
}

// Rules returns the rules in extraction order
func (e *Extractor) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Extract fills FilenameTokens from stem. A field whose regex does not match is
// left empty and reported as an ErrPatternMismatch in the returned slice;
// those are warnings, never failures.
func (e *Extractor) Extract(stem string) (types.FilenameTokens, []error) {
	var tokens types.FilenameTokens
	var warnings []error

	work := stem
	for _, r := range e.rules {
		loc := r.Regex.FindStringSubmatchIndex(work)
		if loc == nil {
			if r.Field != FieldStrip {
				warnings = append(warnings, types.ErrPatternMismatch{Field: string(r.Field), Stem: stem})
			}
			continue
		}

		if r.Field == FieldStrip {
			work = strings.TrimSpace(work[:loc[0]] + work[loc[1]:])
			continue
		}

		value := capture(work, loc)
		switch r.Field {
		case FieldShow:
			tokens.Show = value
		case FieldDate:
			tokens.Date = value
		case FieldNumber:
			tokens.Number = value
		case FieldEpisode:
			tokens.Episode = value
		}

		if e.narrow {
			work = work[:loc[0]] + work[loc[1]:]
		}
	}

	return tokens, warnings
}

// capture returns the first participating group, or the whole match when the
// regex has no group.
func capture(s string, loc []int) string {
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] >= 0 {
			return s[loc[i]:loc[i+1]]
		}
	}
	return s[loc[0]:loc[1]]
}
