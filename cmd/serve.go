package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galleryloom/gallerysync/internal/autoscan"
	"github.com/galleryloom/gallerysync/internal/config"
	"github.com/galleryloom/gallerysync/internal/recordstore/pg"
	"github.com/galleryloom/gallerysync/pkg/job"
)

// NewServeCommand creates a cobra command that runs the auto-scan driver
// and its job worker in the foreground until interrupted. There is no
// HTTP/gRPC surface here: the request/response layer is treated as out of
// scope for the Scan Engine itself.
func NewServeCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the auto-scan driver and job worker",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			store, err := pg.New(ctx, cfg.Database.URI)
			if err != nil {
				return fmt.Errorf("connect record store: %w", err)
			}
			defer store.Close()

			queue := job.NewQueue(zap.S())
			defer queue.Stop()

			driver := autoscan.New(queue, cfg, cfg.DataRoot, func(jobCtx context.Context) error {
				_, err := runScan(jobCtx, cfg, store, false)
				return err
			}, zap.S())

			go driver.Run(ctx)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

			for {
				switch s := <-sig; s {
				case syscall.SIGHUP:
					printLastResults()
				default:
					zap.S().Infow("shutting down", "signal", s.String())
					cancel()
					return nil
				}
			}
		},
	}

	registerRootFlags(cmd.Flags(), cfg)
	return cmd
}

// NewLastCommand creates a cobra command that reports the most recent scan
// result held in this process's in-memory cache (internal/scanresult). It
// only has anything to report when invoked after "scan" in the same run,
// or via SIGHUP against a running "serve" process's log output.
func NewLastCommand(cfg *config.Config) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:          "last",
		Short:        "Show the last scan result cached by this process",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := scanCache.Last(dryRun)
			if result == nil {
				fmt.Println("no scan has run in this process yet")
				return nil
			}
			printScanSummary(result, dryRun)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the last dry-run result instead of the last applied one")
	return cmd
}

func printLastResults() {
	if applied := scanCache.Last(false); applied != nil {
		printScanSummary(applied, false)
	}
	if dry := scanCache.Last(true); dry != nil {
		printScanSummary(dry, true)
	}
}
