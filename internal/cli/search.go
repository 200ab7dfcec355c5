package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mydehq/otr/internal/api"
	"github.com/mydehq/otr/internal/types"
	"github.com/mydehq/otr/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog interactively",
	Long: `search opens a picker that ranks catalog shows against what you type.
Choosing a show prints its episodes.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSearch(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	RootCmd.AddCommand(searchCmd)
}

func runSearch(ctx context.Context, query string) {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		logger.Error("search needs a terminal, use 'otr catalog list' instead")
		os.Exit(1)
	}

	cfg := loadConfig()
	opts := baseOptions(cfg)
	load := func(ctx context.Context) ([]types.CatalogEntry, error) {
		return api.CatalogShows(ctx, opts...)
	}

	id, ok, err := ui.RunSearch(ctx, query, load, cfg.Scorer())
	if err != nil {
		logger.Error("Search failed", "error", err)
		os.Exit(1)
	}
	if !ok {
		return
	}

	show, episodes, err := api.CatalogInfo(ctx, id, opts...)
	if err != nil {
		logger.Error("Failed to get show info", "error", err)
		os.Exit(1)
	}
	printShow(show, episodes)
}
