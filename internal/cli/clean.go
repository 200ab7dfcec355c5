package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mydehq/otr/internal/api"
	"github.com/mydehq/otr/internal/ui"
)

var (
	flagCleanGlobal bool
	flagCleanList   bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Remove backups (-g for all, -l to list them)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runClean(cmd, args)
	},
}

func init() {
	RootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&flagCleanGlobal, "global", "g", false, "Remove all backups")
	cleanCmd.Flags().BoolVarP(&flagCleanList, "list", "l", false, "List backups instead of removing them")
}

func runClean(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	opts := baseOptions(loadConfig())

	if flagCleanList {
		records, err := api.Backups(ctx, opts...)
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to list backups: %v", err))
			os.Exit(1)
		}
		if len(records) == 0 {
			logger.Info("No backups")
			return
		}
		fmt.Print(ui.BackupTable(records))
		return
	}

	if flagCleanGlobal {
		if err := api.CleanAll(ctx, opts...); err != nil {
			logger.Error(fmt.Sprintf("Failed to clean backups: %v", err))
			os.Exit(1)
		}
		logger.Info("Removed all backups")
		return
	}

	if len(args) == 0 {
		logger.Error("Please specify a directory or use -g to remove all backups")
		os.Exit(1)
	}

	if err := api.Clean(ctx, args[0], opts...); err != nil {
		logger.Error(fmt.Sprintf("Failed to remove backup for %s: %v", args[0], err))
		os.Exit(1)
	}
	logger.Info("Removed backup", "dir", args[0])
}
