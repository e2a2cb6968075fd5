package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver "pgx"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/pkg/store/migrations"
)

const migrationsTable = "schema_migrations"

// SchemaState describes the PostgreSQL schema after a migration run.
// SQLite schemas are not versioned and always report Version 0.
type SchemaState struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	Changed bool `json:"changed"`
}

// migrateUp applies the embedded SQL migrations. golang-migrate holds an
// advisory lock for the duration, so instances starting together are safe.
func migrateUp(ctx context.Context, dsn string) (SchemaState, error) {
	var state SchemaState

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return state, fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return state, fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := newMigrator(db)
	if err != nil {
		return state, err
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
	case err != nil:
		return state, fmt.Errorf("migration failed: %w", err)
	default:
		state.Changed = true
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return state, fmt.Errorf("failed to read schema version: %w", err)
	}
	state.Version, state.Dirty = version, dirty

	logger.Info("Schema migrated", logger.Component("store"), "version", version, "changed", state.Changed)
	if dirty {
		logger.Warn("Schema is dirty, fix the failed migration and force its version", "version", version)
	}
	return state, nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	drv, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// Migrate brings the configured schema up to date without keeping a store
// open. SQLite databases are migrated by opening them once.
func Migrate(ctx context.Context, cfg *Config) (SchemaState, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return SchemaState{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Type == DatabaseTypePostgres {
		return migrateUp(ctx, cfg.Postgres.DSN())
	}
	s, err := New(ctx, cfg)
	if err != nil {
		return SchemaState{}, err
	}
	return SchemaState{}, s.Close()
}
