// Package memory provides an in-process store.Documents for local runs and
// tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/adeilh/tierkv/store"
)

// Documents keeps documents in a map guarded by a mutex, which makes every
// operation atomic with respect to the others.
type Documents struct {
	mu   sync.RWMutex
	docs map[string]store.Document
	now  func() time.Time
}

func NewDocuments() *Documents {
	return &Documents{docs: make(map[string]store.Document), now: time.Now}
}

func (d *Documents) Upsert(ctx context.Context, doc store.Document) (store.UpsertResult, error) {
	if err := ctx.Err(); err != nil {
		return store.UpsertResult{}, err
	}
	if doc.Name == "" {
		return store.UpsertResult{}, store.ErrInvalidDocument
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now().UTC()
	existing, ok := d.docs[doc.Name]
	if ok {
		doc.CreatedAt = existing.CreatedAt
	} else {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	d.docs[doc.Name] = doc
	return store.UpsertResult{Inserted: !ok, Document: doc}, nil
}

func (d *Documents) Find(ctx context.Context, name string) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return store.Document{}, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	doc, ok := d.docs[name]
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	return doc, nil
}

func (d *Documents) FindAndDelete(ctx context.Context, name string) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return store.Document{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, ok := d.docs[name]
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	delete(d.docs, name)
	return doc, nil
}

func (d *Documents) Ping(ctx context.Context) error { return ctx.Err() }

// Len reports how many documents are stored.
func (d *Documents) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.docs)
}
