package matcher

import (
	"sort"

	"github.com/mydehq/otr/internal/types"
)

// MaxCandidates caps how many candidates a ranking may return
const MaxCandidates = 20

// DefaultThreshold is the minimum similarity a catalog entry must exceed
const DefaultThreshold = 0.55

// Rank scores query against every entry's primary title and returns the
// entries scoring strictly above threshold, best first. Ties keep catalog
// order. At most limit candidates are returned; limit outside 1..20 means 20.
// entries is never modified.
func (s Scorer) Rank(query string, entries []types.CatalogEntry, threshold float64, limit int) []types.MatchCandidate {
	candidates := make([]types.MatchCandidate, 0)
	for _, e := range entries {
		score := s.Score(query, e.Title)
		if score > threshold {
			candidates = append(candidates, types.MatchCandidate{Label: e.Title, Score: score, RefID: e.ID})
		}
	}
	return top(candidates, limit)
}

// RankTitles scores query against plain labels. RefID is the label index.
func (s Scorer) RankTitles(query string, labels []string, threshold float64, limit int) []types.MatchCandidate {
	candidates := make([]types.MatchCandidate, 0, len(labels))
	for i, l := range labels {
		score := s.Score(query, l)
		if score > threshold {
			candidates = append(candidates, types.MatchCandidate{Label: l, Score: score, RefID: i})
		}
	}
	return top(candidates, limit)
}

func top(candidates []types.MatchCandidate, limit int) []types.MatchCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if limit <= 0 || limit > MaxCandidates {
		limit = MaxCandidates
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
