package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pend/internal/chain"
	"github.com/roach88/pend/internal/ident"
)

// ChainOptions holds flags shared by the snapshot commands.
type ChainOptions struct {
	*RootOptions
	Name  string
	Data  string // save only
	Limit int    // history only
}

// RevisionResult is the JSON shape of a snapshot.
type RevisionResult struct {
	ID         ident.ContentID `json:"id"`
	PreviousID ident.ContentID `json:"previous_id"`
	Payload    string          `json:"payload"`
	Seed       bool            `json:"seed,omitempty"`
}

// HistoryResult is the JSON shape of the history command.
type HistoryResult struct {
	Revisions []RevisionResult `json:"revisions"`
}

func revisionResult(rev chain.Revision) RevisionResult {
	return RevisionResult{
		ID:         rev.ID,
		PreviousID: rev.PreviousID,
		Payload:    string(rev.Payload),
		Seed:       rev.IsSeed(),
	}
}

func newChainOptions(rootOpts *RootOptions, cmd *cobra.Command) *ChainOptions {
	opts := &ChainOptions{RootOptions: rootOpts}
	cmd.Flags().StringVar(&opts.Name, "name", DefaultPointerName, "pointer name")
	return opts
}

// commandContext returns the command's context, falling back to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [id]",
		Short: "Print the current snapshot, or make a past one current",
		Long: `Print the payload of the snapshot the pointer designates.

With an id, that snapshot is loaded instead and the pointer moves to it,
so a later save branches from it. A fresh store loads the empty seed
snapshot.

Examples:
  pend load
  pend load 67149a5f3dddaa710dcff82efd58326ba239394657ce6168d7c57b8d9ca7d6e3`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts := newChainOptions(rootOpts, cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		explicit := ""
		if len(args) == 1 {
			explicit = args[0]
		}
		return runLoad(opts, explicit, cmd)
	}
	return cmd
}

func runLoad(opts *ChainOptions, explicit string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	rev, err := s.chain(opts.Name).Load(commandContext(cmd), ident.ContentID(explicit))
	if err != nil {
		return s.out.Fail("failed to load", err)
	}
	s.out.VerboseLog("loaded %s", rev.ID)
	return s.out.Raw(rev.Payload, revisionResult(rev))
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a new snapshot and print its id",
		Long: `Save --data (or stdin) as a new snapshot linked to the current one
and move the pointer to it.

Examples:
  pend save --data "2012-05-09,Hand in homework,true"
  pend save < tasks.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts := newChainOptions(rootOpts, cmd)
	cmd.Flags().StringVar(&opts.Data, "data", "", "payload to save (default: read stdin)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSave(opts, cmd)
	}
	return cmd
}

func runSave(opts *ChainOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	payload := []byte(opts.Data)
	if !cmd.Flags().Changed("data") {
		payload, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return s.out.Fail("failed to read payload", err)
		}
	}

	rev, err := s.chain(opts.Name).Save(commandContext(cmd), payload)
	if err != nil {
		return s.out.Fail("failed to save", err)
	}
	s.out.VerboseLog("saved %s (previous %s)", rev.ID, rev.PreviousID)

	if s.out.Format == "json" {
		return s.out.Success(revisionResult(rev))
	}
	return s.out.Success(rev.ID)
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Step the pointer back one snapshot",
		Long: `Move the pointer to the snapshot before the current one and print it.

Exit codes:
  0 - Pointer moved
  1 - Nothing to undo
  2 - Command error (broken chain, unusable store, etc.)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts := newChainOptions(rootOpts, cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runUndo(opts, cmd)
	}
	return cmd
}

func runUndo(opts *ChainOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	rev, err := s.chain(opts.Name).Undo(commandContext(cmd))
	if err != nil {
		return s.out.Fail("failed to undo", err)
	}
	s.out.VerboseLog("restored %s", rev.ID)
	return s.out.Raw(rev.Payload, revisionResult(rev))
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List snapshots from the current one backward",
		Long: `Walk the chain backward from the current snapshot, newest first.

Each line shows the snapshot id and the first line of its payload.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts := newChainOptions(rootOpts, cmd)
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "maximum snapshots to list (0 = all)")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runHistory(opts, cmd)
	}
	return cmd
}

func runHistory(opts *ChainOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	revs, err := s.chain(opts.Name).History(commandContext(cmd), "", opts.Limit)
	if err != nil {
		return s.out.Fail("failed to read history", err)
	}

	if s.out.Format == "json" {
		result := HistoryResult{Revisions: make([]RevisionResult, 0, len(revs))}
		for _, rev := range revs {
			result.Revisions = append(result.Revisions, revisionResult(rev))
		}
		return s.out.Success(result)
	}

	var b strings.Builder
	for _, rev := range revs {
		fmt.Fprintf(&b, "%s  %s\n", rev.ID, summary(rev))
	}
	return s.out.Raw([]byte(b.String()), nil)
}

// summary is the first payload line, or a marker for the seed.
func summary(rev chain.Revision) string {
	if rev.IsSeed() {
		return "(seed)"
	}
	line, _, _ := bytes.Cut(rev.Payload, []byte{'\n'})
	return string(line)
}
