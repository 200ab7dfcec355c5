package ui

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/mydehq/otr/internal/airdate"
	"github.com/mydehq/otr/internal/config"
	"github.com/mydehq/otr/internal/types"
)

// FilenamePreview renders a sample episode with cfg's template and slug
// settings.
func FilenamePreview(cfg *config.Config) (string, error) {
	slugger, err := cfg.Slugger()
	if err != nil {
		return "", err
	}
	meta := types.ResolvedMetadata{
		ShowTitle:    "Dragnet",
		EpisodeTitle: "The Big Jolt",
		Date:         airdate.MustParse("1955-06-02"),
		Number:       1,
		Extension:    ".mp3",
	}
	return cfg.Template().Render(meta, slugger, 10)
}

// showPreviewAndConfirm shows the config as YAML with a sample filename and
// asks whether to write it.
func showPreviewAndConfirm(cfg *config.Config) (bool, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("failed to preview config: %w", err)
	}
	sample, err := FilenamePreview(cfg)
	if err != nil {
		return false, err
	}

	confirmed := true
	err = RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Configuration Preview").
				Description(fmt.Sprintf("\n%s\n\n%s %s\n", HighlightYAML(string(data)), StyleHeader.Render("Example:"), StylePath.Render(sample))),
			huh.NewConfirm().
				Title("Write configuration?").
				Value(&confirmed),
		),
	))
	if err != nil {
		return false, err
	}
	return confirmed, nil
}
