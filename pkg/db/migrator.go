package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrateDirection selects what Migrate does.
type MigrateDirection int

const (
	MigrateUp MigrateDirection = iota
	MigrateDown
	MigrateStatus
)

// Migrate applies every pending migration in migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, migrationTable string, log *slog.Logger) error {
	return Run(ctx, pool, migrations, migrationTable, MigrateUp, log)
}

// Run executes a goose command against the pool. MigrateDown rolls back the
// latest migration only.
func Run(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, migrationTable string, dir MigrateDirection, log *slog.Logger) error {
	// goose wants database/sql. OpenDBFromPool shares the pool's connections,
	// so the returned *sql.DB is deliberately not closed here.
	db := stdlib.OpenDBFromPool(pool)

	if err := setup(migrations, migrationTable, log); err != nil {
		return err
	}

	return run(ctx, db, dir)
}

func setup(migrations fs.FS, migrationTable string, log *slog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLoggerAdapter{log})
	if migrationTable != "" {
		goose.SetTableName(migrationTable)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	return nil
}

func run(ctx context.Context, db *sql.DB, dir MigrateDirection) error {
	switch dir {
	case MigrateDown:
		if err := goose.DownContext(ctx, db, "."); err != nil {
			return errors.Join(ErrRollbackMigration, err)
		}
	case MigrateStatus:
		if err := goose.StatusContext(ctx, db, "."); err != nil {
			return errors.Join(ErrMigrationStatus, err)
		}
	default:
		if err := goose.UpContext(ctx, db, "."); err != nil {
			return errors.Join(ErrApplyMigrations, err)
		}
	}
	return nil
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	// goose returns the error as well; exiting here would skip cleanup.
	g.log.Error(fmt.Sprintf(format, args...))
}
