package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mydehq/otr/internal/api"
	"github.com/mydehq/otr/internal/ui"
)

var undoCmd = &cobra.Command{
	Use:   "undo <dir>",
	Short: "Restore the original names of the last rename in dir",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := baseOptions(loadConfig())
		if err := api.Undo(cmd.Context(), args[0], opts...); err != nil {
			logger.Error(fmt.Sprintf("Failed to undo: %v", err))
			os.Exit(1)
		}
		logger.Success(fmt.Sprintf("%s: %s", ui.StyleHeader.Render("Restored"), ui.StylePath.Render(args[0])))
	},
}

func init() {
	RootCmd.AddCommand(undoCmd)
}
