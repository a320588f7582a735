package cmd

import (
	"database/sql"
	"path/filepath"

	"github.com/fatih/color"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galleryloom/gallerysync/internal/config"
	"github.com/galleryloom/gallerysync/pkg/logger"
	"github.com/galleryloom/gallerysync/pkg/migrations"
)

// NewMigrateCommand creates a cobra command that applies the Record Store's
// Postgres schema with goose.
func NewMigrateCommand(cfg *config.Config) *cobra.Command {
	var migrationPath string

	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Run record store database migrations",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.SetupLogger(cfg.LogLevel, cfg.LogFormat)
			defer log.Sync()
			undo := zap.ReplaceGlobals(log)
			defer undo()

			zap.S().Infow("starting database migration", "db_uri", cfg.Database.URI, "migration_path", migrationPath)

			db, err := sql.Open("pgx", cfg.Database.URI)
			if err != nil {
				zap.S().Errorw("failed to connect to database", "error", err)
				return err
			}
			defer db.Close()
			db.SetMaxOpenConns(cfg.Database.MaxOpenConnections)

			if err := db.Ping(); err != nil {
				zap.S().Errorw("failed to ping database", "error", err)
				return err
			}

			absPath, err := filepath.Abs(migrationPath)
			if err != nil {
				zap.S().Errorw("failed to resolve migration path", "error", err)
				return err
			}

			zap.S().Infow("running migrations", "path", absPath)
			if err := migrations.Run(db, absPath); err != nil {
				zap.S().Errorw("migration failed", "error", err)
				return err
			}

			zap.S().Info("migrations completed successfully")
			return nil
		},
	}

	registerMigrateFlags(cmd, cfg, &migrationPath)
	return cmd
}

func registerMigrateFlags(cmd *cobra.Command, cfg *config.Config, migrationPath *string) {
	nfs := cobrautil.NewNamedFlagSets(cmd)

	dbFlagSet := nfs.FlagSet(color.New(color.FgCyan, color.Bold).Sprint("database"))
	registerDatabaseFlags(dbFlagSet, &cfg.Database)

	migrationFlagSet := nfs.FlagSet(color.New(color.FgCyan, color.Bold).Sprint("migration"))
	migrationFlagSet.StringVar(migrationPath, "migration-folder", "migrations/postgres", "path to database migration files")

	nfs.AddFlagSets(cmd)
}
