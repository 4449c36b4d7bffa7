package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pend/internal/ident"
	"github.com/roach88/pend/internal/journal"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Name   string
	Limit  int
	Visits string
}

// LogResult is the JSON shape of the log command.
type LogResult struct {
	Entries []journal.Entry `json:"entries"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recorded pointer moves, newest first",
		Long: `Show the journal of load, save and undo moves, newest first.

Requires a journal (--journal or "journal:" in the config file). Unlike
history, the log includes snapshots the pointer has since abandoned.

Examples:
  pend --journal .pend/journal.db log
  pend --journal .pend/journal.db log --name pend/head -n 10
  pend --journal .pend/journal.db log --visits <id>

With --visits, only the moves that made id live are shown, oldest first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "only moves of this pointer (default: all)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "maximum entries to show (0 = all)")
	cmd.Flags().StringVar(&opts.Visits, "visits", "", "only moves that made this snapshot id live")
	cmd.MarkFlagsMutuallyExclusive("visits", "limit")

	return cmd
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if s.journal == nil {
		return s.out.Fail("failed to read log", errNoJournal)
	}

	var p ident.ContentID
	if opts.Name != "" {
		p = pointerID(opts.Name)
	}
	var entries []journal.Entry
	if opts.Visits != "" {
		entries, err = readVisits(cmd, s.journal, opts.Visits, p)
	} else {
		entries, err = s.journal.Entries(commandContext(cmd), p, opts.Limit)
	}
	if err != nil {
		return s.out.Fail("failed to read log", err)
	}

	if s.out.Format == "json" {
		return s.out.Success(LogResult{Entries: entries})
	}

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(formatEntry(e))
		b.WriteByte('\n')
	}
	return s.out.Raw([]byte(b.String()), nil)
}

// readVisits returns the moves onto id, restricted to pointer p when set.
func readVisits(cmd *cobra.Command, j *journal.Journal, arg string, p ident.ContentID) ([]journal.Entry, error) {
	id, err := ident.Parse(arg)
	if err != nil {
		return nil, err
	}
	visits, err := j.Visits(commandContext(cmd), id)
	if err != nil {
		return nil, err
	}
	if p == "" {
		return visits, nil
	}
	filtered := []journal.Entry{}
	for _, e := range visits {
		if e.Pointer == p {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// formatEntry renders one move as a log line.
func formatEntry(e journal.Entry) string {
	return fmt.Sprintf("%d\t%s\t%s -> %s", e.Seq, e.Op, short(e.From), short(e.To))
}

// short abbreviates an id for tabular output.
func short(id ident.ContentID) string {
	if id == "" {
		return "-"
	}
	if len(id) > 12 {
		return string(id[:12])
	}
	return string(id)
}
