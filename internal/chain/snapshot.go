package chain

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/roach88/pend/internal/ident"
)

// Separator ends the previous-id header of a snapshot.
const Separator = '\n'

// ErrCorruptSnapshot is returned for blobs that do not decode as snapshots.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Encode builds the snapshot blob linking payload to prev.
func Encode(prev ident.ContentID, payload []byte) []byte {
	buf := make([]byte, 0, len(prev)+1+len(payload))
	buf = append(buf, prev...)
	buf = append(buf, Separator)
	return append(buf, payload...)
}

// Decode splits a snapshot blob into its previous id and payload.
func Decode(blob []byte) (ident.ContentID, []byte, error) {
	i := bytes.IndexByte(blob, Separator)
	if i < 0 {
		return "", nil, fmt.Errorf("%w: missing header separator", ErrCorruptSnapshot)
	}
	prev, err := ident.Parse(string(blob[:i]))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	payload := make([]byte, len(blob)-i-1)
	copy(payload, blob[i+1:])
	return prev, payload, nil
}
