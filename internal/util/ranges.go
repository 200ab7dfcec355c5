// Package util holds small helpers shared by the CLI.
package util

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mydehq/otr/internal/types"
)

// maxRangeSpan bounds one "a-b" part so a typo cannot allocate millions
const maxRangeSpan = 100000

// ParseRanges parses "1-3, 5, 7-9" into sorted, distinct episode numbers.
// Reversed ranges are accepted. Numbers must be positive.
func ParseRanges(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange {
			n, err := positive(part)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
			continue
		}

		start, err := positive(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", part, err)
		}
		end, err := positive(hi)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", part, err)
		}
		if start > end {
			start, end = end, start
		}
		if end-start > maxRangeSpan {
			return nil, fmt.Errorf("range %q is too wide", part)
		}
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
	}

	slices.Sort(out)
	return slices.Compact(out), nil
}

func positive(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", strings.TrimSpace(s))
	}
	if n < 1 {
		return 0, fmt.Errorf("episode number %d must be positive", n)
	}
	return n, nil
}

// SelectEpisodes keeps the episodes whose number is in nums. An empty nums
// keeps everything.
func SelectEpisodes(episodes []types.EpisodeRecord, nums []int) []types.EpisodeRecord {
	if len(nums) == 0 {
		return episodes
	}
	var out []types.EpisodeRecord
	for _, ep := range episodes {
		if _, ok := slices.BinarySearch(nums, ep.Number); ok {
			out = append(out, ep)
		}
	}
	return out
}
