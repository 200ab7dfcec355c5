package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/mydehq/otr/internal/config"
	"github.com/mydehq/otr/internal/matcher"
)

// ErrWizardCancelled is returned when the user backs out of the first step
// or declines to write the result.
var ErrWizardCancelled = errors.New("init cancelled")

// RunInitWizard walks through the main settings, editing cfg in place.
// It returns nil only when the user confirmed the preview.
func RunInitWizard(cfg *config.Config) error {
	step := 0

	threshold := strconv.FormatFloat(cfg.Match.Threshold, 'f', -1, 64)
	padding := strconv.Itoa(cfg.Output.Padding)
	fields := cfg.Output.Fields

	for {
		PrintBanner("init")
		var err error

		switch step {
		case 0:
			err = RunForm(huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Catalog").
						Description("\nJSON directory, or a .db/.sqlite file. Empty uses the default location.\n").
						Value(&cfg.Catalog.Path),
				),
			))
			if errors.Is(HandleAbort(err), ErrUserBack) {
				return ErrWizardCancelled
			}

		case 1:
			err = RunForm(huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Match threshold").
						Description("\nShows must score above this to be offered (0 to 1).\n").
						Value(&threshold).
						Validate(validateUnit),
					huh.NewConfirm().
						Title("Pick a lone candidate without asking?").
						Value(&cfg.Match.AutoSelectSingle),
				),
			))

		case 2:
			err = RunForm(huh.NewForm(
				huh.NewGroup(
					huh.NewMultiSelect[string]().
						Title("Filename fields").
						Description("\nParts of the new name, in this order\n").
						Options(
							huh.NewOption("Show", matcher.FieldShow).Selected(hasField(fields, matcher.FieldShow)),
							huh.NewOption("Air date", matcher.FieldDate).Selected(hasField(fields, matcher.FieldDate)),
							huh.NewOption("Episode number", matcher.FieldEpNum).Selected(hasField(fields, matcher.FieldEpNum)),
							huh.NewOption("Episode title", matcher.FieldEpName).Selected(hasField(fields, matcher.FieldEpName)),
						).
						Value(&fields).
						Validate(func(v []string) error {
							if len(v) == 0 {
								return errors.New("pick at least one field")
							}
							return nil
						}),
					huh.NewInput().
						Title("Separator").
						Value(&cfg.Output.Separator),
					huh.NewInput().
						Title("Episode padding").
						Description("\n0 derives the width from the number of files\n").
						Value(&padding).
						Validate(validateNonNegative),
				),
			))

		case 3:
			err = RunForm(huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Back up files before renaming?").
						Value(&cfg.Backup.Enabled),
					huh.NewConfirm().
						Title("Write tags after renaming?").
						Description("Needs id3v2, AtomicParsley or mkvpropedit").
						Value(&cfg.Tag.Enabled),
				),
			))

		case 4:
			cfg.Match.Threshold, _ = strconv.ParseFloat(strings.TrimSpace(threshold), 64)
			cfg.Output.Padding, _ = strconv.Atoi(strings.TrimSpace(padding))
			cfg.Output.Fields = fields

			var confirmed bool
			confirmed, err = showPreviewAndConfirm(cfg)
			if err == nil {
				if !confirmed {
					return ErrWizardCancelled
				}
				return nil
			}
		}

		if err != nil {
			err = HandleAbort(err)
			switch {
			case errors.Is(err, ErrUserBack):
				step--
				continue
			case errors.Is(err, ErrUserQuit):
				return ErrWizardCancelled
			default:
				return err
			}
		}
		step++
	}
}

func hasField(fields []string, f string) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}

func validateUnit(s string) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || f > 1 {
		return fmt.Errorf("must be a number from 0 to 1")
	}
	return nil
}

func validateNonNegative(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err != nil || n < 0 {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}
