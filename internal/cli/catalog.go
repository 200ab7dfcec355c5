package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mydehq/otr/internal/api"
	"github.com/mydehq/otr/internal/types"
	"github.com/mydehq/otr/internal/ui"
	"github.com/mydehq/otr/internal/util"
)

var (
	flagCatEpisodes string
	flagCatID       int
	flagCatTitle    string
	flagCatAliases  []string
	flagCatForce    bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog management commands",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the shows in the catalog",
	Run: func(cmd *cobra.Command, args []string) {
		runCatalogList(cmd.Context())
	},
}

var catalogInfoCmd = &cobra.Command{
	Use:   "info <id>",
	Short: "Show a show and its episodes",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCatalogInfo(cmd.Context(), parseID(args[0]))
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file|url>",
	Short: "Import an episode log table as a show",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCatalogImport(cmd.Context(), args[0])
	},
}

var catalogRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a show",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCatalogRm(cmd.Context(), parseID(args[0]))
	},
}

var catalogPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the catalog location",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := api.CatalogPath(baseOptions(loadConfig())...)
		if err != nil {
			logger.Error("Failed to open catalog", "error", err)
			os.Exit(1)
		}
		fmt.Println(path)
	},
}

func init() {
	RootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogInfoCmd, catalogImportCmd, catalogRmCmd, catalogPathCmd)

	catalogInfoCmd.Flags().StringVarP(&flagCatEpisodes, "episodes", "e", "", "Only these episode numbers, e.g. 1-5,9")
	catalogImportCmd.Flags().IntVar(&flagCatID, "id", 0, "Show id")
	catalogImportCmd.Flags().StringVarP(&flagCatTitle, "title", "t", "", "Show title")
	catalogImportCmd.Flags().StringArrayVarP(&flagCatAliases, "alias", "a", nil, "Alternate show title (repeatable)")
	catalogImportCmd.Flags().BoolVarP(&flagCatForce, "force", "f", false, "Replace an existing show")
	_ = catalogImportCmd.MarkFlagRequired("id")
	_ = catalogImportCmd.MarkFlagRequired("title")
}

func parseID(s string) int {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		logger.Error("Invalid show id, expected a positive number", "id", s)
		os.Exit(1)
	}
	return id
}

func runCatalogList(ctx context.Context) {
	items, err := api.CatalogList(ctx, baseOptions(loadConfig())...)
	if err != nil {
		logger.Error("Failed to list catalog", "error", err)
		os.Exit(1)
	}
	if len(items) == 0 {
		logger.Info("Catalog is empty")
		return
	}

	shows := make([]ui.Show, 0, len(items))
	for _, it := range items {
		shows = append(shows, ui.Show{ID: it.ID, Title: it.Title, Aliases: it.Aliases, Episodes: it.EpisodeCount})
	}
	logger.Info(fmt.Sprintf("%s count: %s", ui.StyleHeader.Render("Shows"), ui.StylePattern.Render(fmt.Sprint(len(items)))))
	fmt.Print(ui.CatalogTable(shows))
}

func runCatalogInfo(ctx context.Context, id int) {
	show, episodes, err := api.CatalogInfo(ctx, id, baseOptions(loadConfig())...)
	if err != nil {
		logger.Error("Failed to get show info", "error", err)
		os.Exit(1)
	}

	if flagCatEpisodes != "" {
		nums, err := util.ParseRanges(flagCatEpisodes)
		if err != nil {
			logger.Error("Invalid episode selection", "error", err)
			os.Exit(1)
		}
		episodes = util.SelectEpisodes(episodes, nums)
	}
	printShow(show, episodes)
}

func printShow(show *types.CatalogEntry, episodes []types.EpisodeRecord) {
	keyStyle := ui.StyleHeader.Width(10)

	fmt.Printf("%s %s\n", keyStyle.Render("Title:"), show.Title)
	fmt.Printf("%s %s\n", keyStyle.Render("ID:"), ui.StylePath.Render(strconv.Itoa(show.ID)))
	for _, alias := range show.Aliases {
		fmt.Printf("%s %s\n", keyStyle.Render("Alias:"), alias)
	}
	fmt.Printf("%s %d\n", keyStyle.Render("Episodes:"), len(episodes))
	if len(episodes) > 0 {
		fmt.Print(ui.EpisodeTable(episodes))
	}
}

func runCatalogImport(ctx context.Context, source string) {
	opts := baseOptions(loadConfig())
	if flagCatForce {
		opts = append(opts, api.WithForce())
	}

	show := types.CatalogEntry{ID: flagCatID, Title: flagCatTitle, Aliases: flagCatAliases}
	n, err := api.CatalogImport(ctx, source, show, opts...)
	if err != nil {
		logger.Error("Failed to import episode log", "error", err)
		os.Exit(1)
	}
	logger.Success(fmt.Sprintf("%s: %s %s", ui.StyleHeader.Render("Imported"), show.Title, ui.StyleDim.Render(fmt.Sprintf("(%d episodes)", n))))
}

func runCatalogRm(ctx context.Context, id int) {
	if err := api.CatalogDelete(ctx, id, baseOptions(loadConfig())...); err != nil {
		logger.Error("Failed to remove show", "error", err)
		os.Exit(1)
	}
	logger.Success(fmt.Sprintf("%s: %s", ui.StyleHeader.Render("Removed show"), ui.StylePath.Render(strconv.Itoa(id))))
}
