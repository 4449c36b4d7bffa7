package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pend/internal/ident"
	"github.com/roach88/pend/internal/store"
)

// FsckResult is the JSON shape of the fsck command.
type FsckResult struct {
	Blobs       int               `json:"blobs"`
	Corrupt     []ident.ContentID `json:"corrupt"`
	Head        ident.ContentID   `json:"head,omitempty"`
	ChainLength int               `json:"chain_length"`
	ChainError  string            `json:"chain_error,omitempty"`
}

// OK reports whether the store passed every check.
func (r FsckResult) OK() bool {
	return len(r.Corrupt) == 0 && r.ChainError == ""
}

// NewFsckCommand creates the fsck command.
func NewFsckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fsck",
		Short: "Verify every blob and the current snapshot chain",
		Long: `Re-hash every stored blob and walk the chain behind the pointer.

Exit codes:
  0 - Every blob matches its id and the chain is intact
  1 - Corrupt blobs or a broken chain were found
  2 - Command error (unusable store, etc.)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts := newChainOptions(rootOpts, cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runFsck(opts, cmd)
	}
	return cmd
}

func runFsck(opts *ChainOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ids, err := s.store.List()
	if err != nil {
		return s.out.Fail("failed to list blobs", err)
	}
	bad, err := store.VerifyAll(s.store)
	if err != nil {
		return s.out.Fail("failed to verify blobs", err)
	}
	result := FsckResult{Blobs: len(ids), Corrupt: bad}
	if result.Corrupt == nil {
		result.Corrupt = []ident.ContentID{}
	}
	for _, id := range bad {
		s.logger.Warn("corrupt blob", "id", id)
	}

	c := s.chain(opts.Name)
	ctx := commandContext(cmd)
	if head, ok, err := c.Head(ctx); err != nil {
		result.ChainError = err.Error()
	} else if ok {
		result.Head = head
	}
	if result.ChainError == "" {
		revs, err := c.History(ctx, "", 0)
		result.ChainLength = len(revs)
		if err != nil {
			result.ChainError = err.Error()
		}
	}

	if s.out.Format == "json" {
		if err := s.out.Success(result); err != nil {
			return err
		}
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "checked %d blob(s), %d corrupt\n", result.Blobs, len(result.Corrupt))
		for _, id := range result.Corrupt {
			fmt.Fprintf(&b, "corrupt: %s\n", id)
		}
		fmt.Fprintf(&b, "chain: %d snapshot(s)\n", result.ChainLength)
		if result.ChainError != "" {
			fmt.Fprintf(&b, "chain broken: %s\n", result.ChainError)
		}
		if err := s.out.Raw([]byte(b.String()), nil); err != nil {
			return err
		}
	}

	if !result.OK() {
		return NewExitError(ExitFailure, "store check failed")
	}
	return nil
}
