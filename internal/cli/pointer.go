package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pend/internal/ident"
	"github.com/roach88/pend/internal/journal"
	"github.com/roach88/pend/internal/store"
)

// DefaultPointerName names the pointer that load, save and undo move.
const DefaultPointerName = "pend/head"

// PointerOptions holds flags for the pointer commands.
type PointerOptions struct {
	*RootOptions
	Name string
}

// PointerResult is the JSON shape of a pointer.
type PointerResult struct {
	Name    string          `json:"name"`
	Pointer ident.ContentID `json:"pointer"`
	Target  ident.ContentID `json:"target,omitempty"`
	Set     bool            `json:"set"`
	// LastMove is the newest journaled move of this pointer, when a
	// journal is open and has one.
	LastMove *journal.Entry `json:"last_move,omitempty"`
}

// pointerID derives the pointer identity for a human-readable name.
func pointerID(name string) ident.ContentID {
	return ident.PointerFor(name)
}

// NewPointerCommand creates the pointer command group.
func NewPointerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PointerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pointer",
		Short: "Inspect or move a named pointer",
		Long: `A pointer is a mutable slot holding one content id.

Pointers are addressed by name; the slot's identity is derived from the
NFC-normalized name, so "café" typed either way is the same pointer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.Name, "name", DefaultPointerName, "pointer name")

	cmd.AddCommand(&cobra.Command{
		Use:           "get",
		Short:         "Print the id a pointer designates",
		Long: `Print the id a pointer designates.

When a journal is open, the pointer's last recorded move is printed on a
second line.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPointerGet(opts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "set <id>",
		Short:         "Make a pointer designate id",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPointerSet(opts, args[0], cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "clear",
		Short:         "Remove a pointer",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPointerClear(opts, cmd)
		},
	})

	return cmd
}

func runPointerGet(opts *PointerOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	p := pointerID(opts.Name)
	target, ok, err := s.store.GetPointer(p)
	if err != nil {
		return s.out.Fail("failed to read pointer", err)
	}
	if !ok {
		return s.out.Fail("failed to read pointer", fmt.Errorf("pointer %q: %w", opts.Name, store.ErrNotFound))
	}

	var last *journal.Entry
	if s.journal != nil {
		e, found, err := s.journal.Latest(commandContext(cmd), p)
		if err != nil {
			return s.out.Fail("failed to read journal", err)
		}
		if found {
			last = &e
		}
	}

	if s.out.Format == "json" {
		return s.out.Success(PointerResult{Name: opts.Name, Pointer: p, Target: target, Set: true, LastMove: last})
	}
	if last == nil {
		return s.out.Success(target)
	}
	return s.out.Raw([]byte(fmt.Sprintf("%s\nlast move: %s\n", target, formatEntry(*last))), nil)
}

func runPointerSet(opts *PointerOptions, arg string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	target, err := ident.Parse(arg)
	if err != nil {
		return s.out.Fail("failed to set pointer", err)
	}
	p := pointerID(opts.Name)
	if err := s.store.SetPointer(p, target); err != nil {
		return s.out.Fail("failed to set pointer", err)
	}
	s.out.VerboseLog("pointer %s -> %s", opts.Name, target)

	if s.out.Format == "json" {
		return s.out.Success(PointerResult{Name: opts.Name, Pointer: p, Target: target, Set: true})
	}
	return nil
}

func runPointerClear(opts *PointerOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	p := pointerID(opts.Name)
	if err := s.store.DeletePointer(p); err != nil {
		return s.out.Fail("failed to clear pointer", err)
	}

	if s.out.Format == "json" {
		return s.out.Success(PointerResult{Name: opts.Name, Pointer: p})
	}
	return nil
}
