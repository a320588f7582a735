package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galleryloom/gallerysync/internal/activity"
	"github.com/galleryloom/gallerysync/internal/config"
	"github.com/galleryloom/gallerysync/internal/entity"
	"github.com/galleryloom/gallerysync/internal/executor"
	"github.com/galleryloom/gallerysync/internal/planner"
	"github.com/galleryloom/gallerysync/internal/recordstore"
	"github.com/galleryloom/gallerysync/internal/recordstore/pg"
	"github.com/galleryloom/gallerysync/internal/scanresult"
	"github.com/galleryloom/gallerysync/internal/status"
)

// NewScanCommand creates a cobra command that plans and, unless --dry-run is
// set, applies one scan against the configured sources.
func NewScanCommand(cfg *config.Config) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:          "scan",
		Short:        "Plan and apply a sync scan over the configured sources",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := pg.New(ctx, cfg.Database.URI)
			if err != nil {
				return fmt.Errorf("connect record store: %w", err)
			}
			defer store.Close()

			result, err := runScan(ctx, cfg, store, dryRun)
			if err != nil {
				return err
			}

			printScanSummary(result, dryRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan the scan without copying, zipping, or writing records")
	registerRootFlags(cmd.Flags(), cfg)
	return cmd
}

// runScan plans a scan and, unless dryRun, executes the resulting actions.
// Shared by the scan subcommand and the auto-scan driver.
func runScan(ctx context.Context, cfg *config.Config, store recordstore.Store, dryRun bool) (*entity.ScanResult, error) {
	sink := activity.NewSink(500)
	reporter := status.NewReporter()
	log := zap.S()

	plan := planner.New(store, sink, cfg.Roots, log)
	result, err := plan.Plan(ctx, cfg.Settings, cfg.Sources, cfg.Exclusions)
	if err != nil {
		reporter.Error("planning failed", map[string]any{"error": err.Error()})
		return nil, fmt.Errorf("plan scan: %w", err)
	}

	planned := int64(result.Summary.Planned)
	if dryRun {
		planned = 0
	}
	bar := progressbar.NewOptions64(planned, progressbar.OptionSetDescription("applying scan"))
	done := make(chan struct{})
	go watchProgress(reporter, bar, planned, done)

	exec := executor.New(store, sink, reporter, cfg.Roots, cfg.Settings.UseHardlinks, log)
	runErr := exec.Run(ctx, result, dryRun)
	close(done)
	bar.Finish()

	scanCache.Store(result, dryRun)

	if runErr != nil {
		return result, fmt.Errorf("execute scan: %w", runErr)
	}
	return result, nil
}

// watchProgress polls reporter until done is closed, nudging bar toward the
// Status Reporter's published completion fraction.
func watchProgress(reporter *status.Reporter, bar *progressbar.ProgressBar, planned int64, done <-chan struct{}) {
	if planned <= 0 {
		return
	}
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			snap := reporter.Current()
			if snap.Progress == nil {
				continue
			}
			_ = bar.Set64(int64(*snap.Progress * float64(planned)))
		}
	}
}

func printScanSummary(result *entity.ScanResult, dryRun bool) {
	mode := "applied"
	if dryRun {
		mode = "planned (dry-run)"
	}

	var bytes int64
	for _, a := range result.Actions {
		if a.Bytes != nil {
			bytes += *a.Bytes
		}
	}

	fmt.Printf("scan %s: %d actions planned, %d skipped, %d archives, %d galleries zipped, %d duplicates, %s\n",
		mode, result.Summary.Planned, result.Summary.Skipped, result.Summary.ArchivesToCopy,
		result.Summary.GalleriesToZip, result.Summary.Duplicates, humanize.Bytes(uint64(bytes)))
}

// scanCache holds the most recent scan result in this process, served by
// the "last" subcommand when running alongside "serve".
var scanCache = scanresult.NewCache()
