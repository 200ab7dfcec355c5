package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mydehq/otr/internal/api"
	"github.com/mydehq/otr/internal/chooser"
	"github.com/mydehq/otr/internal/config"
	"github.com/mydehq/otr/internal/renamer"
	"github.com/mydehq/otr/internal/types"
	"github.com/mydehq/otr/internal/ui"
)

var (
	flagConfig         string
	flagCatalog        string
	flagVerbose        bool
	flagQuiet          bool
	flagNonInteractive bool

	logger *ui.Logger
)

var RootCmd = &cobra.Command{
	Use:           "otr",
	Short:         "Give old-time radio recordings canonical filenames",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbosity(flagQuiet, flagVerbose)
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default ~/.config/otr/config.yml)")
	RootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Catalog directory or .db file")
	RootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose output")
	RootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress output except errors")
	RootCmd.PersistentFlags().BoolVar(&flagNonInteractive, "non-interactive", false, "Fail on ambiguous matches instead of asking")

	logger = ui.NewLogger(os.Stderr)
	api.SetDefaultEventHandler(logger.Events())

	colorizeHelp(RootCmd)
}

// loadConfig reads the config selected by --config or exits
func loadConfig() *config.Config {
	cfg, err := api.LoadConfig(flagConfig)
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	return cfg
}

// baseOptions carries the global flags into api calls
func baseOptions(cfg *config.Config) []api.Option {
	opts := []api.Option{api.WithConfigValue(cfg)}
	if flagCatalog != "" {
		opts = append(opts, api.WithCatalog(flagCatalog))
	}
	return opts
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func interactive() bool {
	return !flagNonInteractive && isTerminal(os.Stdin) && isTerminal(os.Stderr)
}

// newChooser picks huh prompts on a terminal, plain line reads from piped
// stdin, and no prompts at all with --non-interactive.
func newChooser(cfg *config.Config) *chooser.Chooser {
	auto := chooser.WithAutoSelectSingle(cfg.Match.AutoSelectSingle)
	switch {
	case flagNonInteractive:
		return chooser.New(nil, nil, auto, chooser.WithNonInteractive(true))
	case interactive():
		return chooser.New(ui.CandidateRenderer{W: os.Stderr}, ui.FormPrompter{}, auto)
	default:
		return chooser.New(chooser.TextRenderer{W: os.Stderr}, chooser.NewLinePrompter(os.Stdin, os.Stderr), auto)
	}
}

// printSummary logs how many operations ended in each state
func printSummary(ops []types.RenameOperation, edit bool) {
	if flagQuiet {
		return
	}
	counts := renamer.Summary(ops)

	done, label := counts[types.StatusSuccess], "renamed"
	if !edit {
		done, label = counts[types.StatusPending], "planned"
	}
	logger.Info("Summary",
		label, lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Render(fmt.Sprint(done)),
		"skipped", lipgloss.NewStyle().Foreground(lipgloss.Color("192")).Render(fmt.Sprint(counts[types.StatusSkipped])),
		"failed", lipgloss.NewStyle().Foreground(lipgloss.Color("204")).Render(fmt.Sprint(counts[types.StatusFailed])),
	)
	if !edit && done > 0 {
		logger.Info(ui.StyleDim.Render("Nothing was renamed, run again with --edit to apply"))
	}
}
