package store

import (
	"io"

	"github.com/roach88/pend/internal/ident"
)

// ContentStore is immutable, deduplicated, hash-addressed blob storage.
type ContentStore interface {
	// Put stores data under its digest and returns the digest.
	// Storing content that already exists is a no-op.
	Put(data []byte) (ident.ContentID, error)

	// Get returns the blob stored under id.
	// Returns ErrNotFound if id is well-formed but absent.
	Get(id ident.ContentID) ([]byte, error)

	// Has reports whether a blob is stored under id.
	Has(id ident.ContentID) (bool, error)

	// OpenWriter starts an incremental write. The caller must Commit or
	// Close the returned Writer.
	OpenWriter() (Writer, error)

	// OpenReader opens a stored blob for incremental reads.
	// The caller must close the returned ReadCloser.
	OpenReader(id ident.ContentID) (io.ReadCloser, error)

	// Find returns the stored ids starting with prefix, sorted.
	Find(prefix string) ([]ident.ContentID, error)

	// List returns every stored id, sorted.
	List() ([]ident.ContentID, error)
}

// PointerStore is a set of mutable named slots, each designating one
// ContentID.
type PointerStore interface {
	// SetPointer makes p designate id, replacing any previous value.
	SetPointer(p, id ident.ContentID) error

	// DeletePointer removes p. Removing an absent pointer is not an error.
	DeletePointer(p ident.ContentID) error

	// GetPointer returns the id p designates. ok is false, with a nil
	// error, when p has never been set.
	GetPointer(p ident.ContentID) (id ident.ContentID, ok bool, err error)
}

// Store is the capability set shared by MemoryStore and FileStore.
type Store interface {
	ContentStore
	PointerStore
}

// Writer streams a blob into the store.
//
// Commit finalizes the digest and publishes the blob. Close after Commit
// is a no-op; Close without Commit discards everything written. Callers
// should defer Close right after OpenWriter so the temp resource is
// released on every exit path.
type Writer interface {
	io.Writer
	Commit() (ident.ContentID, error)
	Close() error
}

// Compile-time interface checks.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)
