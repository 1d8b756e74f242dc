// Package postgres implements the persistent document tier on PostgreSQL.
//
// Documents live in a single table keyed by name:
//
//	CREATE TABLE documents (
//	  name       TEXT PRIMARY KEY,
//	  value      TEXT NOT NULL,
//	  kind       TEXT NOT NULL,       -- 'int' | 'string'
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
//
// The schema is versioned under migrations/ and applied with Migrate.
package postgres

import (
	"context"
	"database/sql"
	"log/slog"
)

// Connect opens a PostgreSQL connection and wraps it in a DocumentRepository.
func Connect(ctx context.Context, opts ...Option) (*DocumentRepository, *sql.DB, error) {
	db, err := Open(ctx, opts...)
	if err != nil {
		return nil, nil, err
	}
	return NewDocumentRepository(db), db, nil
}

// Migrate applies every pending migration to the database at dsn.
func Migrate(dsn string, logger *slog.Logger) error {
	m, err := NewMigrator(dsn, logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}
