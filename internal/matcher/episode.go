package matcher

import (
	"regexp"
	"sort"

	"github.com/mydehq/otr/internal/types"
)

// DefaultEpisodePattern captures the title fragment after an eNN marker
const DefaultEpisodePattern = `e\d\d[_-](.*)`

type variant struct {
	title   string
	episode *types.EpisodeRecord
}

// EpisodeTarget returns the fragment of stem to compare episode titles with:
// the first capture of fragment when it matches, otherwise the whole stem.
func EpisodeTarget(stem string, fragment *regexp.Regexp) string {
	if fragment == nil {
		return stem
	}
	m := fragment.FindStringSubmatch(stem)
	if m == nil {
		return stem
	}
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}

// ResolveEpisode flattens episodes into one candidate per known title,
// scores each against the fragment of stem and returns the best one. There
// is no threshold: a non-empty list always yields a result.
func (s Scorer) ResolveEpisode(episodes []types.EpisodeRecord, stem string, fragment *regexp.Regexp) (types.EpisodeMatch, error) {
	var variants []variant
	for i := range episodes {
		for _, title := range episodes[i].Titles {
			if title == "" {
				continue
			}
			variants = append(variants, variant{title: title, episode: &episodes[i]})
		}
	}
	if len(variants) == 0 {
		return types.EpisodeMatch{}, types.ErrEmptyEpisodeList{}
	}

	target := EpisodeTarget(stem, fragment)
	scores := make([]float64, len(variants))
	idx := make([]int, len(variants))
	for i, v := range variants {
		scores[i] = s.Score(target, v.title)
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	best := variants[idx[0]]
	return types.EpisodeMatch{
		Title:  best.title,
		Number: best.episode.Number,
		Date:   best.episode.Date,
		Score:  scores[idx[0]],
	}, nil
}
