package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mydehq/otr/internal/api"
)

var (
	slugFlags      renameFlags
	flagForReal    bool
	flagSpacesOnly bool
	flagKeepDashes bool
	flagStrict     bool
	flagCustom     string
	flagCustomSep  string
)

var slugCmd = &cobra.Command{
	Use:   "slug <files...>",
	Short: "Slugify filenames without parsing them",
	Long: `slug lower-cases each filename and turns spaces and underscores into
dashes. Custom rules replace or delete characters first: "bB,)" turns b
into B and deletes ")".`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		flags := cmd.Flags()
		if flags.Changed("spaces-only") {
			cfg.Slug.PreserveCase = flagSpacesOnly
		}
		if flags.Changed("keep-dashes") {
			cfg.Slug.KeepDashes = flagKeepDashes
		}
		if flags.Changed("strict") {
			cfg.Slug.Strict = flagStrict
		}
		if flags.Changed("custom") {
			cfg.Slug.Custom = flagCustom
		}
		if flags.Changed("custom-sep") {
			cfg.Slug.CustomSep = flagCustomSep
		}

		files, err := api.ExpandFiles(args, cfg)
		if err != nil {
			logger.Error("Invalid arguments", "error", err)
			os.Exit(1)
		}

		opts := baseOptions(cfg)
		if flagForReal {
			opts = append(opts, api.WithEdit())
		}
		if slugFlags.noBackup {
			opts = append(opts, api.WithNoBackup())
		}

		ops, err := api.Slug(cmd.Context(), files, opts...)
		if err != nil {
			logger.Error("Slug failed", "error", err)
			os.Exit(1)
		}
		slugFlags.print(ops)
		printSummary(ops, flagForReal)
	},
}

func init() {
	RootCmd.AddCommand(slugCmd)
	slugCmd.Flags().BoolVarP(&flagForReal, "for-real", "r", false, "Rename the files")
	slugCmd.Flags().BoolVarP(&flagSpacesOnly, "spaces-only", "s", false, "Keep the original case")
	slugCmd.Flags().BoolVar(&flagKeepDashes, "keep-dashes", false, "Do not collapse runs of dashes")
	slugCmd.Flags().BoolVarP(&flagStrict, "strict", "t", false, "Drop everything but letters, digits, dots, dashes and underscores")
	slugCmd.Flags().StringVar(&flagCustom, "custom", "", "Replacement rules, e.g. \"bB,)\"")
	slugCmd.Flags().StringVar(&flagCustomSep, "custom-sep", ",", "Separator between custom rules")
	slugCmd.Flags().BoolVar(&slugFlags.noBackup, "no-backup", false, "Skip backup creation")
	slugCmd.Flags().BoolVar(&slugFlags.compact, "compact", false, "Print one line per file instead of a table")
}
