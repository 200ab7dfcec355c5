package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mydehq/otr/internal/api"
	"github.com/mydehq/otr/internal/tagger"
	"github.com/mydehq/otr/internal/types"
	"github.com/mydehq/otr/internal/ui"
)

var (
	flagTagFuzzy bool
	flagTagShow  string
)

var tagCmd = &cobra.Command{
	Use:   "tag <files...>",
	Short: "Write resolved metadata into tags without renaming",
	Long: `tag resolves each file the same way regex (or fuzzy, with --fuzzy) does
and writes show, episode, number and air date into its tags.

mp3 files need id3v2, m4a/mp4 files need AtomicParsley and mka/mkv files
need mkvpropedit. Other formats are left alone.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tools := tagger.New().Available()
		var missing []string
		for bin, ok := range tools {
			if !ok {
				missing = append(missing, bin)
			}
		}
		if len(missing) == len(tools) {
			logger.Error("No tagging tool found, install id3v2, AtomicParsley or mkvpropedit")
			os.Exit(1)
		}
		if len(missing) > 0 {
			slices.Sort(missing)
			logger.Warn(fmt.Sprintf("%s: %s", ui.StyleHeader.Render("Not installed"), strings.Join(missing, ", ")))
		}

		cfg := loadConfig()
		files, err := api.ExpandFiles(args, cfg)
		if err != nil {
			logger.Error("Invalid arguments", "error", err)
			os.Exit(1)
		}

		opts := append(baseOptions(cfg), api.WithChooser(newChooser(cfg)))
		if flagTagFuzzy {
			opts = append(opts, api.WithFuzzy())
		}
		if flagTagShow != "" {
			opts = append(opts, api.WithShow(flagTagShow))
		}

		n, err := api.Tag(cmd.Context(), files, opts...)
		if errors.Is(err, types.ErrAborted) {
			logger.Warn(ui.StyleDim.Render("Cancelled"))
		}
		logger.Info(fmt.Sprintf("%s %d of %d files", ui.StyleHeader.Render("Tagged"), n, len(files)))
		if err != nil && !errors.Is(err, types.ErrAborted) {
			os.Exit(1)
		}
	},
}

func init() {
	RootCmd.AddCommand(tagCmd)
	tagCmd.Flags().BoolVarP(&flagTagFuzzy, "fuzzy", "f", false, "Match against the catalog")
	tagCmd.Flags().StringVarP(&flagTagShow, "show", "s", "", "Match every file against this show name (with --fuzzy)")
}
