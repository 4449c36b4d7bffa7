package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/roach88/pend/internal/chain"
	"github.com/roach88/pend/internal/ident"
	"github.com/roach88/pend/internal/store"
	"github.com/roach88/pend/internal/testutil"
)

// expectedErrors maps the names usable in expect.error to sentinels.
var expectedErrors = map[string]error{
	"exhausted":    chain.ErrChainExhausted,
	"not_found":    store.ErrNotFound,
	"invalid_id":   ident.ErrInvalidIdentifier,
	"broken_chain": chain.ErrBrokenChain,
	"corrupt":      chain.ErrCorruptSnapshot,
}

// Harness is the scenario execution engine.
type Harness struct {
	store  store.Store
	chain  *chain.Chain
	result *Result
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// dir is scratch space for the file backend and is ignored by the
// memory backend. Each run starts from an empty store.
//
// A returned error means the scenario could not be executed at all;
// failed expectations are reported in Result.
func Run(ctx context.Context, scenario *Scenario, dir string) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	var st store.Store
	switch scenario.Backend {
	case BackendFile:
		fs, err := store.NewFileStore(filepath.Join(dir, "store"),
			store.WithNameGenerator(testutil.NewSequentialNameGenerator("tmp")),
			store.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create file store: %w", err)
		}
		st = fs
	default:
		st = store.NewMemoryStore(store.WithMemoryLogger(logger))
	}

	result := NewResult()
	opts := []chain.Option{chain.WithRecorder(result), chain.WithLogger(logger)}
	if scenario.Pointer != "" {
		opts = append(opts, chain.WithPointer(ident.PointerFor(scenario.Pointer)))
	}

	h := &Harness{
		store:  st,
		chain:  chain.New(st, opts...),
		result: result,
		logger: logger,
	}

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h.executeStep(ctx, i, step)
	}

	for i, a := range scenario.Assertions {
		if err := h.evaluateAssertion(ctx, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}
	return result, nil
}

// outcome is what a step produced.
type outcome struct {
	id       ident.ContentID
	previous ident.ContentID
	payload  []byte
	hasPrev  bool
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step) {
	h.logger.Debug("executing step", "index", index, "op", step.Op)

	out, err := h.perform(ctx, step)
	prefix := fmt.Sprintf("steps[%d] (%s)", index, step.Op)

	expect := step.Expect
	if expect == nil {
		expect = &Expect{}
	}

	if expect.Error != "" {
		want := expectedErrors[expect.Error]
		switch {
		case err == nil:
			h.result.AddError(fmt.Sprintf("%s: expected error %s, got success", prefix, expect.Error))
		case !errors.Is(err, want):
			h.result.AddError(fmt.Sprintf("%s: expected error %s, got %v", prefix, expect.Error, err))
		}
		return
	}
	if err != nil {
		h.result.AddError(fmt.Sprintf("%s: %v", prefix, err))
		return
	}

	if expect.ID != "" && string(out.id) != expect.ID {
		h.result.AddError(fmt.Sprintf("%s: id = %s, want %s", prefix, out.id, expect.ID))
	}
	if expect.Previous != "" {
		if !out.hasPrev {
			h.result.AddError(fmt.Sprintf("%s: op has no previous id", prefix))
		} else if string(out.previous) != expect.Previous {
			h.result.AddError(fmt.Sprintf("%s: previous = %s, want %s", prefix, out.previous, expect.Previous))
		}
	}
	if expect.Payload != nil && string(out.payload) != *expect.Payload {
		h.result.AddError(fmt.Sprintf("%s: payload = %q, want %q", prefix, out.payload, *expect.Payload))
	}
}

func (h *Harness) perform(ctx context.Context, step Step) (outcome, error) {
	var (
		rev chain.Revision
		err error
	)
	switch step.Op {
	case OpLoad:
		rev, err = h.chain.Load(ctx, ident.ContentID(step.ID))
	case OpSave:
		rev, err = h.chain.Save(ctx, []byte(step.Data))
	case OpUndo:
		rev, err = h.chain.Undo(ctx)
	case OpPut:
		id, err := h.store.Put([]byte(step.Data))
		return outcome{id: id, payload: []byte(step.Data)}, err
	case OpGet:
		id, err := ident.Parse(step.ID)
		if err != nil {
			return outcome{}, err
		}
		data, err := h.store.Get(id)
		return outcome{id: id, payload: data}, err
	default:
		return outcome{}, fmt.Errorf("unknown op %q", step.Op)
	}
	return outcome{id: rev.ID, previous: rev.PreviousID, payload: rev.Payload, hasPrev: true}, err
}
