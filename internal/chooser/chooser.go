// Package chooser asks a human to pick one of several ranked candidates.
package chooser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mydehq/otr/internal/types"
)

// Renderer displays candidates and complaints about bad replies
type Renderer interface {
	// Candidates shows the list with 1-based indexes
	Candidates(title string, candidates []types.MatchCandidate)

	// Invalid tells the user a reply was rejected
	Invalid(reply string, max int)
}

// Prompter reads one raw line of input
type Prompter interface {
	Prompt(question string) (string, error)
}

// Options configures a Chooser
type Options struct {
	AutoSelectSingle bool
	NonInteractive   bool
}

// Option is a functional option for New
type Option func(*Options)

// WithAutoSelectSingle skips prompting when only one candidate exists. This
// is a shortcut, not a guarantee the lone candidate is correct.
func WithAutoSelectSingle(auto bool) Option {
	return func(o *Options) {
		o.AutoSelectSingle = auto
	}
}

// WithNonInteractive makes every multi-candidate choice fail with
// ErrAmbiguousMatch instead of prompting.
func WithNonInteractive(nonInteractive bool) Option {
	return func(o *Options) {
		o.NonInteractive = nonInteractive
	}
}

// Chooser runs the pick-one loop
type Chooser struct {
	renderer Renderer
	prompter Prompter
	opts     Options
}

// New returns a Chooser. AutoSelectSingle defaults to true.
func New(r Renderer, p Prompter, opts ...Option) *Chooser {
	o := Options{AutoSelectSingle: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Chooser{renderer: r, prompter: p, opts: o}
}

// Choose returns the candidate the user picks. Out-of-range, non-numeric
// and empty replies are reported and the question is asked again. A
// prompter error, including EOF, ends the loop.
func (c *Chooser) Choose(query, question string, candidates []types.MatchCandidate) (types.MatchCandidate, error) {
	switch {
	case len(candidates) == 0:
		return types.MatchCandidate{}, errors.New("nothing to choose from")
	case len(candidates) == 1 && c.opts.AutoSelectSingle:
		return candidates[0], nil
	case c.opts.NonInteractive || c.prompter == nil:
		return types.MatchCandidate{}, types.ErrAmbiguousMatch{Query: query, Candidates: candidates}
	}

	if c.renderer != nil {
		c.renderer.Candidates(query, candidates)
	}

	for {
		reply, err := c.prompter.Prompt(question)
		if err != nil {
			return types.MatchCandidate{}, fmt.Errorf("choosing %q: %w", query, err)
		}

		index, ok := parseIndex(reply, len(candidates))
		if ok {
			return candidates[index-1], nil
		}
		if c.renderer != nil {
			c.renderer.Invalid(reply, len(candidates))
		}
	}
}

// ChooseTitle picks one of a show's titles. Shows with a single title never
// prompt.
func (c *Chooser) ChooseTitle(show types.CatalogEntry) (string, error) {
	titles := show.Titles()
	if len(titles) == 1 {
		return titles[0], nil
	}

	candidates := make([]types.MatchCandidate, len(titles))
	for i, t := range titles {
		candidates[i] = types.MatchCandidate{Label: t, Score: 1, RefID: show.ID}
	}

	// Titles are always a real choice, even when auto-select is on.
	inner := *c
	inner.opts.AutoSelectSingle = false
	chosen, err := inner.Choose(show.Title, "Choose a title", candidates)
	if err != nil {
		return "", err
	}
	return chosen.Label, nil
}

func parseIndex(reply string, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(reply))
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}
