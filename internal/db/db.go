package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

func Connect(dbURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to database")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		log.Error().Err(err).Msg("failed to ping database")
		db.Close()
		return nil, err
	}

	return db, nil
}

// ConnectAndMigrate opens the database and applies pending migrations.
func ConnectAndMigrate(dbURL string) (*sql.DB, error) {
	db, err := Connect(dbURL)
	if err != nil {
		return nil, err
	}

	if err := MigrateUp(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func setup() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

func MigrateUp(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		log.Error().Err(err).Msg("migration failed")
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	final, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	log.Info().Int64("from_version", current).Int64("to_version", final).Msg("database migrations applied")
	return nil
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(ctx context.Context, db *sql.DB, steps int) error {
	if err := setup(); err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		if err := goose.DownContext(ctx, db, "migrations"); err != nil {
			return fmt.Errorf("failed to roll back migration %d of %d: %w", i+1, steps, err)
		}
	}
	return nil
}

func MigrateStatus(ctx context.Context, db *sql.DB) (int64, error) {
	if err := setup(); err != nil {
		return 0, err
	}

	if err := goose.StatusContext(ctx, db, "migrations"); err != nil {
		return 0, fmt.Errorf("failed to get migration status: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, nil
}
