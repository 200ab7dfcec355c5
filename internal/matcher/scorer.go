// Package matcher scores titles against each other, ranks catalog entries,
// picks the best episode for a file and assembles canonical filenames.
package matcher

import (
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/unicode/norm"
)

var separatorRun = regexp.MustCompile(`[-_.\s]+`)

// Scorer computes a Jaro-Winkler similarity in [0,1] between two titles
type Scorer struct {
	CaseSensitive bool

	// Normalize applies NFC and folds separator runs to one space first
	Normalize bool
}

// DefaultScorer is case-insensitive and normalizing
func DefaultScorer() Scorer {
	return Scorer{Normalize: true}
}

// Score returns how similar a and b are; 1 means identical
func (s Scorer) Score(a, b string) float64 {
	if s.Normalize {
		a, b = NormalizeTitle(a), NormalizeTitle(b)
	}
	if a == "" || b == "" {
		return 0
	}
	return strutil.Similarity(a, b, &metrics.JaroWinkler{CaseSensitive: s.CaseSensitive})
}

// NormalizeTitle composes unicode to NFC and turns dashes, underscores,
// dots and whitespace runs into single spaces.
func NormalizeTitle(s string) string {
	s = norm.NFC.String(s)
	s = separatorRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
