package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/mydehq/otr/internal/types"
)

// FormPrompter reads a reply through a huh input on the terminal
type FormPrompter struct{}

// Prompt asks question and returns the raw reply. esc and ctrl+c end the
// prompt with ErrUserBack and ErrUserQuit.
func (FormPrompter) Prompt(question string) (string, error) {
	var reply string
	err := RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(question).
				Value(&reply),
		),
	))
	if err != nil {
		return "", HandleAbort(err)
	}
	return reply, nil
}

// CandidateRenderer prints a numbered, styled candidate list
type CandidateRenderer struct {
	W io.Writer
}

func (r CandidateRenderer) Candidates(title string, candidates []types.MatchCandidate) {
	width := len(fmt.Sprint(len(candidates)))
	var b strings.Builder
	b.WriteString(StyleHeader.Render(title) + "\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "  %s %s %s\n",
			StyleCommand.Render(fmt.Sprintf("%*d)", width, i+1)),
			c.Label,
			StyleDim.Render(fmt.Sprintf("(%.2f)", c.Score)),
		)
	}
	fmt.Fprint(r.W, b.String())
}

func (r CandidateRenderer) Invalid(reply string, max int) {
	fmt.Fprintln(r.W, StyleFlag.Render(fmt.Sprintf("%q is not a choice, enter a number from 1 to %d", reply, max)))
}
