// Package store provides the adaptation journal interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/scene-adapter/internal/model"
)

// ErrNotFound is returned when an entry does not exist or was removed.
var ErrNotFound = errors.New("entry not found")

// RecordParams holds parameters for recording an adaptation run.
type RecordParams struct {
	Kind       model.EntryKind
	Model      string
	Label      string
	Batch      string // groups entries written by one scene batch
	Input      string
	Output     string
	Stats      any // marshalled to JSON; nil stores nothing
	Compressed bool
	TTL        string // e.g. "7d", "24h"; empty keeps the entry forever
}

// ListParams holds parameters for listing entries.
type ListParams struct {
	Kind  model.EntryKind
	Model string
	Batch string
	Limit int
}

// RmParams holds parameters for removing an entry.
type RmParams struct {
	ID   string
	Hard bool
}

// Store defines the journal interface.
type Store interface {
	// Record stores an adaptation run and returns the created entry.
	Record(ctx context.Context, p RecordParams) (*model.Entry, error)

	// Get retrieves an entry by id.
	Get(ctx context.Context, id string) (*model.Entry, error)

	// List lists entries newest first.
	List(ctx context.Context, p ListParams) ([]model.Entry, error)

	// Rm soft-deletes (or hard-deletes) an entry.
	Rm(ctx context.Context, p RmParams) error

	// Close closes the store.
	Close() error
}
