package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/galleryloom/gallerysync/internal/config"
)

// NewSourcesCommand creates a cobra command that lists the configured scan
// sources and their enabled/scan-mode state.
func NewSourcesCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:          "sources",
		Short:        "List configured sources",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(cfg.Sources) == 0 {
				fmt.Println("no sources configured")
				return nil
			}
			for _, s := range cfg.Sources {
				state := color.GreenString("enabled")
				if !s.Enabled {
					state = color.RedString("disabled")
				}
				fmt.Printf("%-24s %-12s %-14s %s\n", s.ID, s.Path, s.ScanMode, state)
			}
			return nil
		},
	}
}

// NewExclusionsCommand creates a cobra command that lists configured
// exclusion prefixes.
func NewExclusionsCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:          "exclusions",
		Short:        "List configured exclusion prefixes",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(cfg.Exclusions) == 0 {
				fmt.Println("no exclusions configured")
				return nil
			}
			for _, e := range cfg.Exclusions {
				fmt.Println(e.Path)
			}
			return nil
		},
	}
}
