// Package store defines the persistent document tier.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/adeilh/tierkv/command"
)

var (
	ErrNotFound        = errors.New("store: document not found")
	ErrInvalidDocument = errors.New("store: invalid document")
)

// Document is one named value in the persistent tier.
type Document struct {
	Name      string
	Value     string
	Kind      command.Kind
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentFromCommand builds the document a SET command writes.
func DocumentFromCommand(cmd command.Command) (Document, error) {
	if cmd.Verb != command.VerbSet || cmd.Value == nil {
		return Document{}, ErrInvalidDocument
	}
	return Document{Name: cmd.Name, Value: cmd.Value.Text(), Kind: cmd.Value.Kind()}, nil
}

// Typed decodes the stored value back into a command.Value.
func (d Document) Typed() (command.Value, error) {
	return command.ValueFromText(d.Kind, d.Value)
}

// UpsertResult tells whether an upsert created or replaced a document.
type UpsertResult struct {
	Inserted bool
	Document Document
}

// Documents is a collection keyed by document name. Upsert must be a single
// atomic operation so concurrent writes of one name never create duplicates.
type Documents interface {
	Upsert(ctx context.Context, doc Document) (UpsertResult, error)
	Find(ctx context.Context, name string) (Document, error)
	FindAndDelete(ctx context.Context, name string) (Document, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
