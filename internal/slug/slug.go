// Package slug canonicalizes text into filename-safe tokens.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mydehq/otr/internal/types"
)

// DefaultCustomSep separates rules in a custom rule string
const DefaultCustomSep = ","

var (
	dashRun  = regexp.MustCompile(`-+`)
	spaceRun = regexp.MustCompile(` +`)
)

// Rule is one custom substitution. An empty To removes From.
type Rule struct {
	From string
	To   string
}

// ParseRules splits text on sep into rules. Every rule must be one
// character (remove it) or two (replace the first with the second).
func ParseRules(text, sep string) ([]Rule, error) {
	if text == "" {
		return nil, nil
	}
	if sep == "" {
		sep = DefaultCustomSep
	}
	if utf8.RuneCountInString(sep) != 1 {
		return nil, fmt.Errorf("custom separator %q must be one character", sep)
	}

	var rules []Rule
	for _, raw := range strings.Split(text, sep) {
		runes := []rune(raw)
		switch len(runes) {
		case 1:
			rules = append(rules, Rule{From: string(runes[0])})
		case 2:
			rules = append(rules, Rule{From: string(runes[0]), To: string(runes[1])})
		default:
			return nil, types.ErrInvalidCustomRule{Rule: raw}
		}
	}
	return rules, nil
}

// Options controls the slug pipeline
type Options struct {
	PreserveCase bool
	KeepDashes   bool
	Strict       bool
	Rules        []Rule
}

// Slugger applies custom rules, lower-casing, dash conversion, the strict
// filter and dash collapsing, in that order.
type Slugger struct {
	opts  Options
	lower cases.Caser
}

// New returns a Slugger for opts
func New(opts Options) *Slugger {
	return &Slugger{
		opts:  opts,
		lower: cases.Lower(language.Und),
	}
}

// Slug canonicalizes s. With default options it is idempotent.
func (s *Slugger) Slug(v string) string {
	for _, r := range s.opts.Rules {
		v = strings.ReplaceAll(v, r.From, r.To)
	}
	if !s.opts.PreserveCase {
		v = s.lower.String(v)
	}
	v = strings.ReplaceAll(v, " ", "-")
	v = strings.ReplaceAll(v, "_", "-")
	if s.opts.Strict {
		v = strings.Map(keepStrict, v)
	}
	if !s.opts.KeepDashes {
		v = dashRun.ReplaceAllString(v, "-")
	}
	return spaceRun.ReplaceAllString(v, " ")
}

func keepStrict(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	case r == '.', r == '_', r == '-':
		return r
	}
	return -1
}
