package store

import (
	"github.com/google/uuid"
)

// NameGenerator produces unique temp-file names inside the scratch
// directory.
type NameGenerator interface {
	Generate() string
}

// UUIDv7Generator names temp files with time-sortable UUIDv7 strings, so
// orphaned files in tmp/ list in creation order.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
