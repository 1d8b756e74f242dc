package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations.
type Migrator struct {
	migrate *migrate.Migrate
	source  source.Driver
	db      *sql.DB
	logger  *slog.Logger
}

// NewMigrator opens a dedicated connection to dsn for running migrations.
func NewMigrator(dsn string, logger *slog.Logger) (*Migrator, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	if logger == nil {
		logger = slog.Default()
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("postgres: migration source: %w", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return &Migrator{migrate: m, source: src, db: db, logger: logger}, nil
}

// Up runs all pending migrations. A dirty version left by an interrupted run
// is forced back to the version before it, so the failed migration runs again.
func (m *Migrator) Up() error {
	version, dirty, err := m.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("postgres: migration version: %w", err)
	}
	if dirty {
		target, err := m.previous(version)
		if err != nil {
			return err
		}
		m.logger.Warn("database schema is dirty, retrying migration", "version", version, "forced", target)
		if err := m.migrate.Force(target); err != nil {
			return fmt.Errorf("postgres: force version %d: %w", target, err)
		}
	}

	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Debug("database schema is up to date", "version", version)
			return nil
		}
		return fmt.Errorf("postgres: migrate up: %w", err)
	}

	newVersion, _, _ := m.migrate.Version()
	m.logger.Info("database schema migrated", "version", newVersion)
	return nil
}

// previous returns the version preceding v, or -1 (no version) when v is the
// first migration.
func (m *Migrator) previous(v uint) (int, error) {
	prev, err := m.source.Prev(v)
	if errors.Is(err, fs.ErrNotExist) {
		return -1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("postgres: migration before %d: %w", v, err)
	}
	return int(prev), nil
}

// Down rolls back every migration.
func (m *Migrator) Down() error {
	if err := m.migrate.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: migrate down: %w", err)
	}
	return nil
}

// Version reports the current schema version and whether it is dirty.
func (m *Migrator) Version() (uint, bool, error) {
	return m.migrate.Version()
}

func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	_ = m.db.Close()
	if sourceErr != nil {
		return fmt.Errorf("postgres: close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("postgres: close migration database: %w", dbErr)
	}
	return nil
}
