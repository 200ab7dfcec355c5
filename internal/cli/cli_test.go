package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mydehq/otr/internal/config"
	"github.com/mydehq/otr/internal/types"
)

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"regex", "fuzzy", "slug", "tag", "catalog", "search", "undo", "clean", "init", "version"} {
		cmd, _, err := RootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered (got %v, %v)", name, cmd, err)
		}
	}
	for _, name := range []string{"list", "info", "import", "rm", "path"} {
		cmd, _, err := RootCmd.Find([]string{"catalog", name})
		if err != nil || cmd.Name() != name {
			t.Errorf("catalog %q not registered", name)
		}
	}
}

func TestUsageTemplate(t *testing.T) {
	var buf bytes.Buffer
	regexCmd.SetOut(&buf)
	defer regexCmd.SetOut(nil)

	if err := regexCmd.Usage(); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Usage:", "otr regex", "<files...>", "--show-re", "--edit", "Global Flags:", "--non-interactive"} {
		if !strings.Contains(out, want) {
			t.Errorf("usage missing %q:\n%s", want, out)
		}
	}
}

func TestNonInteractiveChooserRefusesToGuess(t *testing.T) {
	flagNonInteractive = true
	defer func() { flagNonInteractive = false }()

	c := newChooser(config.Default())
	_, err := c.Choose("gun", "Choose a show", []types.MatchCandidate{{Label: "Gunsmoke"}, {Label: "Gang Busters"}})
	if types.Kind(err) != "AmbiguousMatch" {
		t.Errorf("Choose() error = %v, want AmbiguousMatch", err)
	}
}
