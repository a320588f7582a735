package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galleryloom/gallerysync/cmd"
	"github.com/galleryloom/gallerysync/internal/config"
	"github.com/galleryloom/gallerysync/internal/entity"
	"github.com/galleryloom/gallerysync/pkg/logger"
)

func main() {
	cfg := config.NewDefault()

	var configPath string

	rootCmd := &cobra.Command{
		Use:   "gallerysync",
		Short: "Sync a media library's galleries and archives into a normalized output tree",
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				*cfg = *loaded
			}
			cfg.Roots = entity.Roots{
				DataRoot:       cfg.DataRoot,
				OutputRoot:     cfg.OutputRoot,
				ConfigRoot:     cfg.ConfigRoot,
				DuplicatesRoot: cfg.DuplicatesRoot,
				TmpRoot:        cfg.TmpRoot,
			}

			log := logger.SetupLogger(cfg.LogLevel, cfg.LogFormat)
			zap.ReplaceGlobals(log)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a settings YAML file")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "format of the logs: console or json")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	rootCmd.AddCommand(
		cmd.NewMigrateCommand(cfg),
		cmd.NewScanCommand(cfg),
		cmd.NewDiffCommand(cfg),
		cmd.NewSourcesCommand(cfg),
		cmd.NewExclusionsCommand(cfg),
		cmd.NewAckCommand(cfg),
		cmd.NewServeCommand(cfg),
		cmd.NewLastCommand(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
