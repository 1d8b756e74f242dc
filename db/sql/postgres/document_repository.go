package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/adeilh/tierkv/command"
	"github.com/adeilh/tierkv/store"
)

const documentColumns = `name, value, kind, created_at, updated_at`

// DocumentRepository persists store.Document records inside PostgreSQL.
type DocumentRepository struct {
	db *sql.DB
}

var _ store.Documents = (*DocumentRepository)(nil)

// NewDocumentRepository wraps an existing *sql.DB connection.
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Upsert writes doc in a single INSERT ... ON CONFLICT statement. xmax is zero
// only for rows created by this statement, which tells inserts from updates.
func (r *DocumentRepository) Upsert(ctx context.Context, doc store.Document) (store.UpsertResult, error) {
	const query = `INSERT INTO documents (name, value, kind) VALUES ($1, $2, $3)
                   ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, kind = EXCLUDED.kind, updated_at = now()
                   RETURNING ` + documentColumns + `, (xmax = 0) AS inserted`
	kind := doc.Kind
	if kind == "" {
		kind = command.KindString
	}

	var (
		res   store.UpsertResult
		saved scannedDocument
	)
	err := r.db.QueryRowContext(ctx, query, doc.Name, doc.Value, string(kind)).Scan(
		&saved.Name,
		&saved.Value,
		&saved.Kind,
		&saved.CreatedAt,
		&saved.UpdatedAt,
		&res.Inserted,
	)
	if err != nil {
		return store.UpsertResult{}, translateDocumentError(err)
	}
	res.Document = saved.document()
	return res, nil
}

func (r *DocumentRepository) Find(ctx context.Context, name string) (store.Document, error) {
	const query = `SELECT ` + documentColumns + ` FROM documents WHERE name = $1`
	return r.queryOne(ctx, query, name)
}

// FindAndDelete removes the named document and returns what was deleted.
func (r *DocumentRepository) FindAndDelete(ctx context.Context, name string) (store.Document, error) {
	const query = `DELETE FROM documents WHERE name = $1 RETURNING ` + documentColumns
	return r.queryOne(ctx, query, name)
}

func (r *DocumentRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

func (r *DocumentRepository) queryOne(ctx context.Context, query, name string) (store.Document, error) {
	var doc scannedDocument
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&doc.Name,
		&doc.Value,
		&doc.Kind,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Document{}, store.ErrNotFound
		}
		return store.Document{}, translateDocumentError(err)
	}
	return doc.document(), nil
}

type scannedDocument struct {
	store.Document
	Kind string
}

func (d scannedDocument) document() store.Document {
	doc := d.Document
	doc.Kind = command.Kind(d.Kind)
	return doc
}

func translateDocumentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23514", "22021", "22P05":
			return fmt.Errorf("%w: %s", store.ErrInvalidDocument, pqErr.Message)
		}
		return fmt.Errorf("postgres: %s (%s): %w", pqErr.Message, pqErr.Code, err)
	}
	return fmt.Errorf("postgres: %w", err)
}
