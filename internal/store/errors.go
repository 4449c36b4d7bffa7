package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a well-formed id with no stored blob.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable indicates a filesystem failure: directory
	// creation, permissions, temp files or rename.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrCorrupt indicates stored bytes that no longer match their id,
	// or a pointer file that does not hold a valid id.
	ErrCorrupt = errors.New("corrupt store data")

	// ErrWriterClosed is returned when a Writer is used after Commit or Close.
	ErrWriterClosed = errors.New("writer closed")
)

// PathError records a failed filesystem operation.
//
// It matches both its Kind (one of the sentinels above) and the
// underlying error with errors.Is.
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func unavailable(op, path string, err error) error {
	return &PathError{Op: op, Path: path, Kind: ErrStorageUnavailable, Err: err}
}

func notFound(op, path string, err error) error {
	return &PathError{Op: op, Path: path, Kind: ErrNotFound, Err: err}
}

// IsNotFound reports whether err is a missing blob or pointer.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailable reports whether err is a filesystem-level failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// IsCorrupt reports whether err flags stored data that fails its hash.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}
