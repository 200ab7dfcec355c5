package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mydehq/otr/internal/api"
	"github.com/mydehq/otr/internal/config"
	"github.com/mydehq/otr/internal/ui"
)

var (
	flagInitForce   bool
	flagInitCatalog string
	flagInitDefault bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a config file",
	Long: `init writes a config file, by default ~/.config/otr/config.yml.
On a terminal a short wizard asks for the main settings; otherwise, or with
--defaults, the built-in defaults are written.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := flagConfig
		if len(args) > 0 {
			path = args[0]
		}
		runInit(path)
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&flagInitForce, "force", "f", false, "Overwrite existing config")
	initCmd.Flags().StringVar(&flagInitCatalog, "catalog-path", "", "Catalog location to store in the config")
	initCmd.Flags().BoolVarP(&flagInitDefault, "defaults", "d", false, "Write the defaults without asking")
}

func runInit(path string) {
	if path == "" {
		var err error
		if path, err = config.UserPath(); err != nil {
			logger.Error("Failed to resolve config path", "error", err)
			os.Exit(1)
		}
	}

	cfg := config.Default()
	if flagInitCatalog != "" {
		cfg.Catalog.Path = flagInitCatalog
	}

	var opts []api.Option
	if flagInitForce {
		opts = append(opts, api.WithForce())
	}

	if !flagInitDefault && interactive() {
		if _, err := os.Stat(path); err == nil && !flagInitForce {
			overwrite := false
			err := ui.RunForm(huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Config already exists").
						Description(fmt.Sprintf("Overwrite %s?", ui.StylePath.Render(path))).
						Value(&overwrite),
				),
			))
			if err != nil || !overwrite {
				logger.Warn(ui.StyleDim.Render("Init cancelled"))
				return
			}
			opts = append(opts, api.WithForce())
		}

		if err := ui.RunInitWizard(cfg); err != nil {
			if errors.Is(err, ui.ErrWizardCancelled) || errors.Is(err, ui.ErrUserQuit) {
				logger.Warn(ui.StyleDim.Render("Init cancelled"))
				return
			}
			logger.Error("Init failed", "error", err)
			os.Exit(1)
		}
	}

	written, err := api.Init(path, cfg, opts...)
	if err != nil {
		logger.Error("Failed to init config", "error", err)
		os.Exit(1)
	}
	logger.Success(fmt.Sprintf("%s: %s", ui.StyleHeader.Render("Created config"), ui.StylePath.Render(written)))
}
