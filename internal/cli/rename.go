package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mydehq/otr/internal/api"
	"github.com/mydehq/otr/internal/config"
	"github.com/mydehq/otr/internal/types"
	"github.com/mydehq/otr/internal/ui"
)

// renameFlags are shared by the regex and fuzzy commands
type renameFlags struct {
	edit     bool
	view     bool
	yes      bool
	noBackup bool
	noTag    bool
	padding  int
	compact  bool
}

func (f *renameFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.edit, "edit", false, "Rename the files")
	cmd.Flags().BoolVar(&f.view, "view", false, "Only show the planned names (default)")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Do not ask before renaming")
	cmd.Flags().BoolVar(&f.noBackup, "no-backup", false, "Skip backup creation")
	cmd.Flags().BoolVarP(&f.noTag, "no-tag", "T", false, "Do not write tags")
	cmd.Flags().IntVarP(&f.padding, "padding", "p", 0, "Episode number width (0 derives it from the file count)")
	cmd.Flags().BoolVar(&f.compact, "compact", false, "Print one line per file instead of a table")
	cmd.MarkFlagsMutuallyExclusive("edit", "view")
}

func (f *renameFlags) apply(cmd *cobra.Command, cfg *config.Config) []api.Option {
	if cmd.Flags().Changed("padding") {
		cfg.Output.Padding = f.padding
	}
	opts := baseOptions(cfg)
	opts = append(opts, api.WithChooser(newChooser(cfg)))
	if f.edit {
		opts = append(opts, api.WithEdit())
		if !f.yes && interactive() {
			opts = append(opts, api.WithConfirm(f.confirm))
		}
	}
	if f.noBackup {
		opts = append(opts, api.WithNoBackup())
	}
	if f.noTag {
		opts = append(opts, api.WithNoTag())
	}
	return opts
}

// confirm shows the plan and asks before anything is renamed
func (f *renameFlags) confirm(ops []types.RenameOperation) (bool, error) {
	pending := 0
	for _, op := range ops {
		if op.Status == types.StatusPending {
			pending++
		}
	}
	if pending == 0 {
		return false, nil
	}

	f.print(ops)
	ok := true
	err := ui.RunForm(huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Rename %d files?", pending)).
				Value(&ok),
		),
	))
	if err != nil {
		return false, ui.HandleAbort(err)
	}
	return ok, nil
}

func (f *renameFlags) print(ops []types.RenameOperation) {
	if flagQuiet {
		return
	}
	if f.compact {
		fmt.Print(ui.CompactPlan(ops))
		return
	}
	fmt.Print(ui.PlanTable(ops))
}

var (
	regexFlags  renameFlags
	flagShowRe  string
	flagDateRe  string
	flagNumRe   string
	flagEpRe    string
	flagStripRe string
	flagNarrow  bool

	fuzzyFlags renameFlags
	flagShow   string
	flagRatio  float64
	flagFzEpRe string
)

var regexCmd = &cobra.Command{
	Use:   "regex <files...>",
	Short: "Name files from the fields regexes extract",
	Long: `regex pulls show, date, number and episode out of each filename with
regular expressions and assembles the canonical name from them as they are.

Directories are expanded to the media files they contain.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		overrides := map[string]*string{
			"show-re":    &cfg.Patterns.Show,
			"date-re":    &cfg.Patterns.Date,
			"number-re":  &cfg.Patterns.Number,
			"episode-re": &cfg.Patterns.Episode,
			"strip-re":   &cfg.Patterns.Strip,
		}
		values := map[string]string{
			"show-re":    flagShowRe,
			"date-re":    flagDateRe,
			"number-re":  flagNumRe,
			"episode-re": flagEpRe,
			"strip-re":   flagStripRe,
		}
		for name, dst := range overrides {
			if cmd.Flags().Changed(name) {
				*dst = values[name]
			}
		}
		if cmd.Flags().Changed("narrow") {
			cfg.Patterns.Narrow = flagNarrow
		}
		runRename(cmd.Context(), cfg, args, &regexFlags, regexFlags.apply(cmd, cfg))
	},
}

var fuzzyCmd = &cobra.Command{
	Use:   "fuzzy <files...>",
	Short: "Name files by matching them against the catalog",
	Long: `fuzzy matches the show in each filename against the catalog, then
picks the closest episode title of that show. When several shows score
above the ratio you are asked to choose.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cmd.Flags().Changed("ratio") {
			cfg.Match.Threshold = flagRatio
		}
		if cmd.Flags().Changed("episode-re") {
			cfg.Patterns.Episode = flagFzEpRe
		}
		opts := append(fuzzyFlags.apply(cmd, cfg), api.WithFuzzy())
		if flagShow != "" {
			opts = append(opts, api.WithShow(flagShow))
		}
		runRename(cmd.Context(), cfg, args, &fuzzyFlags, opts)
	},
}

func init() {
	RootCmd.AddCommand(regexCmd, fuzzyCmd)

	regexCmd.Flags().StringVarP(&flagShowRe, "show-re", "s", "", "Regex for the show name")
	regexCmd.Flags().StringVarP(&flagDateRe, "date-re", "d", "", "Regex for the air date")
	regexCmd.Flags().StringVarP(&flagNumRe, "number-re", "n", "", "Regex for the episode number")
	regexCmd.Flags().StringVarP(&flagEpRe, "episode-re", "e", "", "Regex for the episode title")
	regexCmd.Flags().StringVar(&flagStripRe, "strip-re", "", "Regex removed from the name before extraction")
	regexCmd.Flags().BoolVar(&flagNarrow, "narrow", false, "Remove each matched field before extracting the next")
	regexFlags.register(regexCmd)

	fuzzyCmd.Flags().StringVarP(&flagShow, "show", "s", "", "Match every file against this show name")
	fuzzyCmd.Flags().Float64VarP(&flagRatio, "ratio", "r", 0, "Minimum show similarity (0 to 1)")
	fuzzyCmd.Flags().StringVarP(&flagFzEpRe, "episode-re", "e", "", "Regex for the episode title")
	fuzzyFlags.register(fuzzyCmd)
}

func runRename(ctx context.Context, cfg *config.Config, args []string, f *renameFlags, opts []api.Option) {
	files, err := api.ExpandFiles(args, cfg)
	if err != nil {
		logger.Error("Invalid arguments", "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Warn("No media files found")
		return
	}

	ops, err := api.Rename(ctx, files, opts...)
	if errors.Is(err, types.ErrAborted) {
		logger.Warn(ui.StyleDim.Render("Cancelled, nothing renamed"))
		return
	}
	if err != nil {
		logger.Error("Operation failed", "error", err)
		os.Exit(1)
	}

	// With a confirm prompt the plan was already shown
	if !f.edit || f.yes || !interactive() {
		f.print(ops)
	}
	printSummary(ops, f.edit)
}
