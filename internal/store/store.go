// Package store implements a generic keyed record store: named collections of
// JSON documents with auto-incrementing primary keys and secondary lookup
// indexes, declared up front and written schema-on-write. Two backends exist,
// MySQL for the real thing and an in-memory map for tests.
package store

import (
	"context"
	"errors"
)

// Error taxonomy. Every backend maps its failures onto these sentinels; no
// driver error crosses the package boundary unwrapped.
var (
	// ErrUnavailable means the backing storage cannot be reached at all.
	// Fatal to every dependent component.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrNotFound is a lookup miss. Callers treat it as "nothing to show".
	ErrNotFound = errors.New("record not found")
	// ErrConstraint is a unique-index violation, e.g. a duplicate email.
	ErrConstraint = errors.New("unique constraint violated")
	// ErrOpFailed wraps any other storage failure.
	ErrOpFailed = errors.New("storage operation failed")
)

// Record is anything a collection can hold. Keys are assigned by Add and must
// be carried by the record on Update.
type Record interface {
	Key() int64
	SetKey(int64)
}

// Index is a secondary lookup path into a collection. Unique indexes admit at
// most one record per value.
type Index struct {
	Name    string
	Unique  bool
	SQLType string // column type for the SQL backend, VARCHAR(255) when empty
}

// Definition is the backend-independent description of a collection.
type Definition struct {
	Name    string
	Indexes []Index
}

func (d Definition) index(name string) (Index, bool) {
	for _, idx := range d.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index{}, false
}

// Collection binds a Definition to a record type. Fields extracts the indexed
// values from a record at write time; New allocates an empty record for reads.
type Collection[T Record] struct {
	Definition
	New    func() T
	Fields func(T) map[string]any
}

// Store is the uniform CRUD surface over one collection. Every call wraps
// exactly one storage operation; atomicity never spans collections.
type Store[T Record] interface {
	// Add inserts the record, assigns and returns its key. Fails with
	// ErrConstraint when a unique index is violated.
	Add(ctx context.Context, rec T) (int64, error)
	// Get returns the record under key, or ErrNotFound.
	Get(ctx context.Context, key int64) (T, error)
	// GetAll returns every record in the collection, unordered.
	GetAll(ctx context.Context) ([]T, error)
	// Update upserts by primary key; the record must carry its key.
	Update(ctx context.Context, rec T) error
	// Delete removes the record under key. No-op if absent.
	Delete(ctx context.Context, key int64) error
	// GetByIndex returns every record whose indexed field equals value.
	GetByIndex(ctx context.Context, index string, value any) ([]T, error)
	// GetSingleByIndex returns one record whose indexed field equals value
	// (the lowest-keyed match on non-unique indexes), or ErrNotFound.
	GetSingleByIndex(ctx context.Context, index string, value any) (T, error)
	// Clear removes every record in the collection.
	Clear(ctx context.Context) error
}
