package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional YAML config file
	Root    string // store directory, overrides config
	Backend string // "file" | "memory", overrides config
	Journal string // journal database path, overrides config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pend CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pend",
		Short: "pend - content-addressed storage with undo",
		Long: `Store blobs by the SHA-256 of their bytes and keep an undoable
chain of snapshots behind a named pointer.

Blobs are immutable and deduplicated. Every save writes a new snapshot
linking to the one before it; undo walks that link and load can make any
past snapshot current again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Root, "root", "", "store directory (default .pend)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend (file|memory)")
	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal of pointer moves")

	// Add subcommands
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewPointerCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewUndoCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewFsckCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// Execute runs the pend CLI with os.Args and returns the process exit
// code. Errors not already reported by a command are printed to stderr;
// usage errors from argument parsing exit with ExitCommandError.
func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitCommandError
	}
	if !exitErr.reported {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitErr.Code
}
