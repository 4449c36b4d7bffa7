package harness

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/pend/internal/chain"
)

// evaluateAssertion checks one assertion against the final store and trace.
func (h *Harness) evaluateAssertion(ctx context.Context, a Assertion) error {
	switch a.Type {
	case AssertHead:
		return h.assertHead(ctx, a.ID)
	case AssertBlobCount:
		ids, err := h.store.List()
		if err != nil {
			return err
		}
		if len(ids) != a.Count {
			return fmt.Errorf("store holds %d blob(s), want %d", len(ids), a.Count)
		}
		return nil
	case AssertTraceOrder:
		got := traceOps(h.result.Trace)
		if !slices.Equal(got, a.Ops) {
			return fmt.Errorf("trace ops = %v, want %v", got, a.Ops)
		}
		return nil
	case AssertTraceCount:
		n := 0
		for _, e := range h.result.Trace {
			if e.Op == chain.Op(a.Op) {
				n++
			}
		}
		if n != a.Count {
			return fmt.Errorf("%s recorded %d time(s), want %d", a.Op, n, a.Count)
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (h *Harness) assertHead(ctx context.Context, want string) error {
	head, ok, err := h.chain.Head(ctx)
	if err != nil {
		return err
	}
	switch {
	case want == "" && ok:
		return fmt.Errorf("pointer designates %s, want unset", head)
	case want != "" && !ok:
		return fmt.Errorf("pointer unset, want %s", want)
	case want != "" && string(head) != want:
		return fmt.Errorf("pointer designates %s, want %s", head, want)
	}
	return nil
}

// traceOps lists the ops of a trace in order.
func traceOps(trace []TraceEvent) []string {
	ops := make([]string, len(trace))
	for i, e := range trace {
		ops[i] = string(e.Op)
	}
	return ops
}
