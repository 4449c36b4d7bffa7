package ident

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
)

// Length is the number of hex characters in a full identifier.
const Length = 256 / 4

// Empty is the digest of zero-length input. Snapshots use it to mark
// "no predecessor".
const Empty ContentID = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// ErrInvalidIdentifier is returned for malformed or wrong-length identifiers.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// ContentID is a 64-character lowercase hex digest.
type ContentID string

func (id ContentID) String() string {
	return string(id)
}

type options struct {
	partial bool
}

// Option modifies validation.
type Option func(*options)

// Partial accepts any prefix of a full identifier, including the empty
// string. Used for prefix lookups only.
func Partial() Option {
	return func(o *options) { o.partial = true }
}

// Validate reports whether id is a well-formed identifier.
func Validate(id string, opts ...Option) bool {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(id) > Length {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return len(id) == Length || o.partial
}

// Check is Validate with an error naming the rejected identifier.
func Check(id string, opts ...Option) error {
	if !Validate(id, opts...) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return nil
}

// Parse validates s as a full identifier.
func Parse(s string) (ContentID, error) {
	if err := Check(s); err != nil {
		return "", err
	}
	return ContentID(s), nil
}

// FromHash finalizes a running digest into a ContentID. h must be a
// SHA-256 hash; the engine never mixes algorithms.
func FromHash(h hash.Hash) ContentID {
	return ContentID(hex.EncodeToString(h.Sum(nil)))
}
