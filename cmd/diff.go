package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/galleryloom/gallerysync/internal/config"
	"github.com/galleryloom/gallerysync/internal/diffengine"
	"github.com/galleryloom/gallerysync/internal/entity"
	"github.com/galleryloom/gallerysync/internal/recordstore/pg"
)

// NewDiffCommand creates a cobra command that reports what a scan would
// find changed, new, or missing without touching the Record Store.
func NewDiffCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "diff",
		Short:        "Report new, changed, unchanged, and missing outputs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := pg.New(ctx, cfg.Database.URI)
			if err != nil {
				return fmt.Errorf("connect record store: %w", err)
			}
			defer store.Close()

			result, err := diffengine.New(store, cfg.Roots).Diff(ctx, cfg.Settings, cfg.Sources, cfg.Exclusions)
			if err != nil {
				return fmt.Errorf("diff scan: %w", err)
			}

			printDiff(result)
			return nil
		},
	}

	registerRootFlags(cmd.Flags(), cfg)
	return cmd
}

func printDiff(result *entity.DiffResult) {
	fmt.Printf("new: %d  changed: %d  unchanged: %d  missing: %d\n",
		len(result.New), len(result.Changed), len(result.Unchanged), len(result.Missing))

	printBucket("new", result.New)
	printBucket("changed", result.Changed)
	printBucket("missing", result.Missing)
}

func printBucket(label string, items []entity.DiffItem) {
	for _, item := range items {
		fmt.Printf("  %-8s %s\n", label, item.TargetPath)
	}
}
