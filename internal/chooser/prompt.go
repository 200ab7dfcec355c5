package chooser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mydehq/otr/internal/types"
)

// LinePrompter reads replies line by line from any reader
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter prompts on out and reads from in
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Prompt writes question and returns the next line without its newline.
// io.EOF is returned only when no input is left at all.
func (p *LinePrompter) Prompt(question string) (string, error) {
	if p.out != nil {
		fmt.Fprintf(p.out, "%s: ", question)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// TextRenderer prints candidates without styling
type TextRenderer struct {
	W io.Writer
}

// Candidates prints "N) label (score)" lines, right-aligning indexes
func (r TextRenderer) Candidates(title string, candidates []types.MatchCandidate) {
	pad := len(fmt.Sprint(len(candidates)))
	fmt.Fprintf(r.W, "Matches for %q:\n", title)
	for i, c := range candidates {
		fmt.Fprintf(r.W, "%*d) %s (%.2f)\n", pad, i+1, c.Label, c.Score)
	}
}

// Invalid prints the accepted range
func (r TextRenderer) Invalid(reply string, max int) {
	fmt.Fprintf(r.W, "%q is not a choice, enter a number from 1 to %d\n", reply, max)
}
