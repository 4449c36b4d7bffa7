package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pend/internal/ident"
)

// BlobResult is the JSON shape of a single blob.
type BlobResult struct {
	ID   ident.ContentID `json:"id"`
	Data string          `json:"data,omitempty"`
	Size int             `json:"size"`
}

// FindResult is the JSON shape of a prefix search.
type FindResult struct {
	Prefix string            `json:"prefix"`
	IDs    []ident.ContentID `json:"ids"`
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "put [file]",
		Short: "Store a blob and print its id",
		Long: `Store the bytes of file (or stdin) and print their content id.

The blob is streamed to a temp file and hashed as it is written, so the
input never has to fit in memory. Storing bytes that already exist is a
no-op that prints the same id.

Examples:
  pend put notes.txt
  echo hello | pend put`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(rootOpts, args, cmd)
		},
	}
}

func runPut(opts *RootOptions, args []string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return s.out.Fail("failed to open input", err)
		}
		defer f.Close()
		in = f
	}

	w, err := s.store.OpenWriter()
	if err != nil {
		return s.out.Fail("failed to open writer", err)
	}
	defer w.Close()

	n, err := io.Copy(w, in)
	if err != nil {
		return s.out.Fail("failed to write blob", err)
	}
	id, err := w.Commit()
	if err != nil {
		return s.out.Fail("failed to commit blob", err)
	}
	s.out.VerboseLog("stored %d byte(s)", n)

	if s.out.Format == "json" {
		return s.out.Success(BlobResult{ID: id, Size: int(n)})
	}
	return s.out.Success(id)
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print the bytes stored under an id",
		Long: `Print the exact bytes stored under a full 64-character content id.

Exit codes:
  0 - Blob printed
  1 - No blob with that id
  2 - Malformed id or unusable store`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, args[0], cmd)
		},
	}
}

func runGet(opts *RootOptions, arg string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := ident.Parse(arg)
	if err != nil {
		return s.out.Fail("failed to read blob", err)
	}

	if s.out.Format == "json" {
		data, err := s.store.Get(id)
		if err != nil {
			return s.out.Fail("failed to read blob", err)
		}
		return s.out.Success(BlobResult{ID: id, Data: string(data), Size: len(data)})
	}

	r, err := s.store.OpenReader(id)
	if err != nil {
		return s.out.Fail("failed to read blob", err)
	}
	defer r.Close()
	if _, err := io.Copy(s.out.Writer, r); err != nil {
		return s.out.Fail("failed to read blob", err)
	}
	return nil
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "find [prefix]",
		Short: "List stored ids starting with a prefix",
		Long: `List every stored id that starts with prefix, in sorted order.

With no prefix every blob is listed.

Examples:
  pend find 2cf2
  pend find --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			return runFind(rootOpts, prefix, cmd)
		},
	}
}

func runFind(opts *RootOptions, prefix string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ids, err := s.store.Find(prefix)
	if err != nil {
		return s.out.Fail("failed to search store", err)
	}
	if ids == nil {
		ids = []ident.ContentID{}
	}

	if s.out.Format == "json" {
		return s.out.Success(FindResult{Prefix: prefix, IDs: ids})
	}
	if len(ids) == 0 {
		s.out.VerboseLog("no blobs match %q", prefix)
		return nil
	}
	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintln(&b, id)
	}
	return s.out.Raw([]byte(b.String()), nil)
}
