package store

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/roach88/pend/internal/ident"
)

// Verify re-hashes the blob stored under id and fails with ErrCorrupt if
// its bytes no longer produce id.
func Verify(s ContentStore, id ident.ContentID) error {
	r, err := s.OpenReader(id)
	if err != nil {
		return err
	}
	defer r.Close()

	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return fmt.Errorf("verify %s: %w", id, err)
	}
	if got := ident.FromHash(h); got != id {
		return fmt.Errorf("verify %s: content hashes to %s: %w", id, got, ErrCorrupt)
	}
	return nil
}

// VerifyAll checks every blob in s and returns the ids that failed.
// A read error aborts the scan.
func VerifyAll(s ContentStore) ([]ident.ContentID, error) {
	ids, err := s.List()
	if err != nil {
		return nil, err
	}
	var bad []ident.ContentID
	for _, id := range ids {
		err := Verify(s, id)
		switch {
		case err == nil:
		case IsCorrupt(err):
			bad = append(bad, id)
		default:
			return bad, err
		}
	}
	return bad, nil
}
