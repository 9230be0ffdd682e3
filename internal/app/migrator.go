package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/Freeeeeet/practice_scheduler/migrations"
)

// Migrator applies the embedded goose migrations.
type Migrator struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewMigrator(pool *pgxpool.Pool, logger *zap.Logger) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(zap.NewStdLog(logger))

	// goose works on *sql.DB; the pool itself stays owned by the caller.
	return &Migrator{
		db:     stdlib.OpenDBFromPool(pool),
		logger: logger,
	}, nil
}

// Run applies all pending migrations.
func (mg *Migrator) Run(ctx context.Context) error {
	mg.logger.Info("Applying database migrations")

	if err := goose.UpContext(ctx, mg.db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := mg.Version(ctx)
	if err != nil {
		return err
	}
	mg.logger.Info("Migrations applied", zap.Int64("version", version))
	return nil
}

// Down rolls back the most recent migration.
func (mg *Migrator) Down(ctx context.Context) error {
	if err := goose.DownContext(ctx, mg.db, "."); err != nil {
		return fmt.Errorf("roll back migration: %w", err)
	}
	return nil
}

func (mg *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := goose.GetDBVersionContext(ctx, mg.db)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

func (mg *Migrator) Close() error {
	if mg.db != nil {
		return mg.db.Close()
	}
	return nil
}
