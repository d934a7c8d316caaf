// Package store provides the item repository: the single owner of the raw
// items a number line is drawn from.
//
// # Backends
//
//   - [Memory]: in-process map, for tests, the CLI and the terminal viewer
//   - [File]: a dataset file on an afero filesystem, rewritten on every change
//   - [Redis]: items shared between server instances
//   - [Mongo]: one document per item
//
// [Open] picks a backend from a DSN:
//
//	repo, err := store.Open(ctx, "redis://localhost:6379/0")
//	if err != nil {
//	    return err
//	}
//	defer repo.Close()
//
// # Semantics
//
// All backends behave the same way:
//
//   - Create validates the item and rejects an ID that is already present
//     with a CONFLICT error.
//   - EditLabel and EditValue return NOT_FOUND for an unknown ID.
//   - Delete of an unknown ID succeeds and changes nothing.
//   - All returns a copy of the items in insertion order.
//
// Repositories know nothing about layout or rendering; callers take a
// snapshot with All and run a layout pass over it.
package store

import (
	"context"
	"strings"

	"github.com/spf13/afero"

	"github.com/matzehuels/numberline/pkg/errors"
	"github.com/matzehuels/numberline/pkg/item"
)

// Repository is the interface for item storage backends.
type Repository interface {
	// Create adds a new item.
	Create(ctx context.Context, it item.Raw) error

	// EditLabel replaces the label of an existing item.
	EditLabel(ctx context.Context, id, label string) error

	// EditValue replaces the value of an existing item.
	EditValue(ctx context.Context, id string, value float64) error

	// Delete removes an item. Unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// All returns a snapshot of every item in insertion order.
	All(ctx context.Context) ([]item.Raw, error)

	Close() error
}

// DSN schemes understood by [Open].
const (
	SchemeMemory = "memory:"
	SchemeFile   = "file:"
)

// Open returns the repository described by dsn:
//
//   - "" or "memory:": a new empty [Memory]
//   - "redis://..." or "rediss://...": [Redis]
//   - "mongodb://..." or "mongodb+srv://...": [Mongo]
//   - "file:path" or any other string: [File] on the OS filesystem
func Open(ctx context.Context, dsn string) (Repository, error) {
	switch {
	case dsn == "" || dsn == SchemeMemory:
		return NewMemory(), nil
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return OpenRedis(ctx, dsn)
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return OpenMongo(ctx, dsn)
	default:
		path := strings.TrimPrefix(dsn, SchemeFile)
		if path == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfiguration, "store dsn %q has no file path", dsn)
		}
		return OpenFile(afero.NewOsFs(), path)
	}
}

// Seed creates every item in items, stopping at the first failure.
func Seed(ctx context.Context, r Repository, items []item.Raw) error {
	for _, it := range items {
		if err := r.Create(ctx, it); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the item with the given ID from a snapshot of r.
func Get(ctx context.Context, r Repository, id string) (item.Raw, error) {
	items, err := r.All(ctx)
	if err != nil {
		return item.Raw{}, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	return item.Raw{}, notFound(id)
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "item %q not found", id)
}

func conflict(id string) error {
	return errors.New(errors.ErrCodeConflict, "item %q already exists", id)
}
