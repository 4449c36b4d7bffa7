package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/pend/internal/chain"
	"github.com/roach88/pend/internal/config"
	"github.com/roach88/pend/internal/journal"
	"github.com/roach88/pend/internal/store"
)

var errNoJournal = errors.New("no journal configured")

// session is everything one command invocation works with.
type session struct {
	cfg     config.Config
	store   store.Store
	journal *journal.Journal
	logger  *slog.Logger
	out     *OutputFormatter
}

// openSession resolves configuration (file, then flags), configures
// logging and opens the store and, if configured, the journal.
//
// Errors are already reported through the returned formatter, which is
// never nil.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
	s := &session{out: out}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return s, out.Fail("failed to load config", err)
	}
	applyFlags(&cfg, opts, cmd)
	if err := cfg.Validate(); err != nil {
		return s, out.Fail("invalid configuration", err)
	}
	s.cfg = cfg
	out.Format = cfg.Format

	// Configure logging based on verbose flag and config
	logLevel := cfg.Level()
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	s.logger = slog.New(handler)
	slog.SetDefault(s.logger)

	s.logger.Debug("opening store", "backend", cfg.Backend, "root", cfg.Root)
	s.store, err = cfg.OpenStore(s.logger)
	if err != nil {
		return s, out.Fail("failed to open store", err)
	}

	if cfg.Journal != "" {
		s.logger.Debug("opening journal", "path", cfg.Journal)
		s.journal, err = cfg.OpenJournal()
		if err != nil {
			return s, out.Fail("failed to open journal", err)
		}
	}
	return s, nil
}

// applyFlags overrides cfg with every global flag the user set.
func applyFlags(cfg *config.Config, opts *RootOptions, cmd *cobra.Command) {
	if opts.Root != "" {
		cfg.Root = opts.Root
	}
	if opts.Backend != "" {
		cfg.Backend = opts.Backend
	}
	if opts.Journal != "" {
		cfg.Journal = opts.Journal
	}
	if opts.Format != "" && (cmd.Flags().Changed("format") || opts.Config == "") {
		cfg.Format = opts.Format
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
}

// chain returns a Chain over the session's store, recording into the
// journal when one is open.
func (s *session) chain(pointer string) *chain.Chain {
	opts := []chain.Option{chain.WithLogger(s.logger)}
	if pointer != "" {
		opts = append(opts, chain.WithPointer(pointerID(pointer)))
	}
	if s.journal != nil {
		opts = append(opts, chain.WithRecorder(s.journal))
	}
	return chain.New(s.store, opts...)
}

// Close releases the journal. The store holds no open handles.
func (s *session) Close() {
	if s.journal == nil {
		return
	}
	if err := s.journal.Close(); err != nil {
		s.logger.Error("error closing journal", "error", err)
	}
}
