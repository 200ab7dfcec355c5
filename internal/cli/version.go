package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mydehq/otr/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			fmt.Printf("otr %s\n", version.String())
			return
		}
		fmt.Printf("otr %s\n", version.Get())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
