package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/pend/internal/ident"
	"github.com/roach88/pend/internal/store"
)

// EmptySentinel as a previous id means "no predecessor".
const EmptySentinel = ident.Empty

// SeedPayload is the payload of the seed snapshot: an empty history.
const SeedPayload = ""

// SeedID is the id of Encode(EmptySentinel, SeedPayload).
const SeedID ident.ContentID = "38acb15d02d5ac0f2a2789602e9df950c380d2799b4bdb59394e4eeabdd3a662"

// HeadPointer is the default pointer slot, ident.PointerFor("pend/head").
const HeadPointer ident.ContentID = "cecca7f007954b6f1a7ef8c9c5f4410d7df837dc4ac1773d06a071542b7d7ee7"

var (
	// ErrChainExhausted means the current snapshot has no predecessor:
	// there is nothing left to undo.
	ErrChainExhausted = errors.New("nothing to undo")

	// ErrBrokenChain means a link or the pointer names a blob that is not
	// in the store. This is data corruption, not a caller error.
	ErrBrokenChain = errors.New("broken chain")
)

// Revision is one decoded snapshot.
type Revision struct {
	ID         ident.ContentID
	PreviousID ident.ContentID
	Payload    []byte
}

// IsSeed reports whether r is the seed snapshot.
func (r Revision) IsSeed() bool {
	return r.ID == SeedID
}

// Chain moves one pointer along snapshot history in a Store.
type Chain struct {
	store    store.Store
	pointer  ident.ContentID
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Chain.
type Option func(*Chain)

// WithPointer selects the pointer slot. Defaults to HeadPointer.
func WithPointer(p ident.ContentID) Option {
	return func(c *Chain) { c.pointer = p }
}

// WithRecorder reports every pointer move to r.
func WithRecorder(r Recorder) Option {
	return func(c *Chain) { c.recorder = r }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Chain) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Chain over st.
func New(st store.Store, opts ...Option) *Chain {
	c := &Chain{
		store:   st,
		pointer: HeadPointer,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pointer returns the pointer slot this chain moves.
func (c *Chain) Pointer() ident.ContentID {
	return c.pointer
}

// Head returns the current snapshot id. ok is false for a history that
// has never been loaded or saved.
func (c *Chain) Head(ctx context.Context) (ident.ContentID, bool, error) {
	id, ok, err := c.store.GetPointer(c.pointer)
	if err != nil {
		return "", false, fmt.Errorf("read head: %w", err)
	}
	return id, ok, nil
}

// Load makes a snapshot current and returns it.
//
// With explicit empty, the current pointer value is used, or the seed
// when there is none. EmptySentinel also resolves to the seed. The
// pointer is set to the resolved id: loading a past revision makes it
// live.
//
// If a Recorder is configured and fails, the pointer has already moved;
// the returned Revision is valid alongside the error.
func (c *Chain) Load(ctx context.Context, explicit ident.ContentID) (Revision, error) {
	return c.load(ctx, OpLoad, explicit)
}

func (c *Chain) load(ctx context.Context, op Op, explicit ident.ContentID) (Revision, error) {
	from, hasFrom, err := c.Head(ctx)
	if err != nil {
		return Revision{}, err
	}

	current := explicit
	if current == "" {
		current = SeedID
		if hasFrom {
			current = from
		}
	}
	if current == EmptySentinel {
		current = SeedID
	}
	if err := ident.Check(string(current)); err != nil {
		return Revision{}, fmt.Errorf("%s: %w", op, err)
	}

	if current == SeedID {
		if err := c.ensureSeed(); err != nil {
			return Revision{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	// A user-supplied id that is missing is NotFound. The same miss
	// reached through a link or the pointer is corruption.
	rev, err := c.read(current, explicit == "" || op == OpUndo)
	if err != nil {
		return Revision{}, fmt.Errorf("%s %s: %w", op, current, err)
	}

	if err := c.setPointer(op, current); err != nil {
		return Revision{}, err
	}
	return rev, c.record(ctx, op, from, current)
}

// Save stores payload as a new snapshot linked to the current one and
// moves the pointer to it. The returned Revision's PreviousID is the
// snapshot just superseded; keep it to Load it explicitly later.
//
// With no pointer yet, the new snapshot links to EmptySentinel and is
// therefore the first undoable state.
func (c *Chain) Save(ctx context.Context, payload []byte) (Revision, error) {
	from, hasFrom, err := c.Head(ctx)
	if err != nil {
		return Revision{}, err
	}

	prev := EmptySentinel
	if hasFrom {
		prev = from
	} else if err := c.ensureSeed(); err != nil {
		return Revision{}, fmt.Errorf("save: %w", err)
	}

	id, err := c.write(prev, payload)
	if err != nil {
		return Revision{}, fmt.Errorf("save: %w", err)
	}

	if err := c.setPointer(OpSave, id); err != nil {
		return Revision{}, err
	}
	rev := Revision{ID: id, PreviousID: prev, Payload: append([]byte{}, payload...)}
	return rev, c.record(ctx, OpSave, from, id)
}

// Undo moves the pointer to the predecessor of the current snapshot and
// returns it. Fails with ErrChainExhausted when the current snapshot has
// no predecessor.
func (c *Chain) Undo(ctx context.Context) (Revision, error) {
	current, ok, err := c.Head(ctx)
	if err != nil {
		return Revision{}, err
	}
	if !ok {
		current = SeedID
	}

	rev, err := c.read(current, true)
	if err != nil {
		return Revision{}, fmt.Errorf("undo %s: %w", current, err)
	}
	if rev.PreviousID == EmptySentinel {
		return Revision{}, ErrChainExhausted
	}
	return c.load(ctx, OpUndo, rev.PreviousID)
}

// History walks backward from a snapshot (the current one when from is
// empty) and returns at most limit revisions, newest first. limit <= 0
// means the whole chain.
func (c *Chain) History(ctx context.Context, from ident.ContentID, limit int) ([]Revision, error) {
	id := from
	if id == "" {
		head, ok, err := c.Head(ctx)
		if err != nil {
			return nil, err
		}
		id = SeedID
		if ok {
			id = head
		}
	}
	if err := ident.Check(string(id)); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	var revs []Revision
	for {
		if err := ctx.Err(); err != nil {
			return revs, err
		}
		rev, err := c.read(id, from == "" || len(revs) > 0)
		if err != nil {
			return revs, fmt.Errorf("history %s: %w", id, err)
		}
		revs = append(revs, rev)
		if rev.PreviousID == EmptySentinel || (limit > 0 && len(revs) >= limit) {
			return revs, nil
		}
		id = rev.PreviousID
	}
}

// read decodes the snapshot stored under id. The seed is well-known and
// decoded without a store round trip. linked marks ids that came from a
// link or the pointer, where a missing blob means a broken chain.
func (c *Chain) read(id ident.ContentID, linked bool) (Revision, error) {
	if id == SeedID {
		return Revision{ID: SeedID, PreviousID: EmptySentinel, Payload: []byte(SeedPayload)}, nil
	}
	blob, err := c.store.Get(id)
	if err != nil {
		if linked && store.IsNotFound(err) {
			return Revision{}, fmt.Errorf("%w: %w", ErrBrokenChain, err)
		}
		return Revision{}, err
	}
	prev, payload, err := Decode(blob)
	if err != nil {
		return Revision{}, err
	}
	return Revision{ID: id, PreviousID: prev, Payload: payload}, nil
}

// write streams a snapshot through a store Writer: header, then payload.
func (c *Chain) write(prev ident.ContentID, payload []byte) (ident.ContentID, error) {
	w, err := c.store.OpenWriter()
	if err != nil {
		return "", err
	}
	defer w.Close()

	if _, err := w.Write(append([]byte(prev), Separator)); err != nil {
		return "", err
	}
	if _, err := w.Write(payload); err != nil {
		return "", err
	}
	return w.Commit()
}

// ensureSeed stores the seed snapshot. Idempotent.
func (c *Chain) ensureSeed() error {
	id, err := c.store.Put(Encode(EmptySentinel, []byte(SeedPayload)))
	if err != nil {
		return fmt.Errorf("store seed: %w", err)
	}
	if id != SeedID {
		return fmt.Errorf("store seed: got id %s, want %s", id, SeedID)
	}
	return nil
}

func (c *Chain) setPointer(op Op, to ident.ContentID) error {
	if err := c.store.SetPointer(c.pointer, to); err != nil {
		return fmt.Errorf("%s: set pointer: %w", op, err)
	}
	return nil
}

// record reports a completed pointer move.
func (c *Chain) record(ctx context.Context, op Op, from, to ident.ContentID) error {
	c.logger.Debug("pointer moved", "op", op, "from", from, "to", to)
	if c.recorder == nil {
		return nil
	}
	t := Transition{Op: op, Pointer: c.pointer, From: from, To: to}
	if err := c.recorder.Record(ctx, t); err != nil {
		return fmt.Errorf("%s: record transition: %w", op, err)
	}
	return nil
}
