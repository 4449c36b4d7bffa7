package harness

import (
	"context"

	"github.com/roach88/pend/internal/chain"
	"github.com/roach88/pend/internal/ident"
)

// TraceEvent is one recorded pointer move.
type TraceEvent struct {
	Seq  int64           `json:"seq"`
	Op   chain.Op        `json:"op"`
	From ident.ContentID `json:"from,omitempty"`
	To   ident.ContentID `json:"to"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains every pointer move in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Record implements chain.Recorder by appending to the trace.
func (r *Result) Record(_ context.Context, t chain.Transition) error {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:  int64(len(r.Trace) + 1),
		Op:   t.Op,
		From: t.From,
		To:   t.To,
	})
	return nil
}

var _ chain.Recorder = (*Result)(nil)
