package chain

import (
	"context"

	"github.com/roach88/pend/internal/ident"
)

// Op names the chain operation that moved a pointer.
type Op string

const (
	OpLoad Op = "load"
	OpSave Op = "save"
	OpUndo Op = "undo"
)

// Transition is one pointer move. From is empty when the pointer had no
// value before the move.
type Transition struct {
	Op      Op
	Pointer ident.ContentID
	From    ident.ContentID
	To      ident.ContentID
}

// Recorder receives every pointer move made by a Chain.
type Recorder interface {
	Record(ctx context.Context, t Transition) error
}
