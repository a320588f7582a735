// Package migrations applies the Record Store's SQL schema using goose.
package migrations

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Run applies every pending migration under migrationFolder to db.
func Run(db *sql.DB, migrationFolder string) error {
	goose.SetLogger(&zapLogger{log: zap.S().Named("migrations")})

	fi, err := os.Stat(migrationFolder)
	if err != nil {
		return err
	}
	if !fi.Mode().IsDir() {
		return fmt.Errorf("migration folder %s is not a directory", migrationFolder)
	}

	goose.SetBaseFS(os.DirFS(migrationFolder))
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.Up(db, ".")
}

// zapLogger adapts a *zap.SugaredLogger to goose.Logger.
type zapLogger struct {
	log *zap.SugaredLogger
}

func (l *zapLogger) Printf(format string, v ...interface{}) {
	l.log.Infof(format, v...)
}

func (l *zapLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatalf(format, v...)
}
