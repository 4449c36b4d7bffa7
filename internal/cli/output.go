package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/pend/internal/chain"
	"github.com/roach88/pend/internal/config"
	"github.com/roach88/pend/internal/ident"
	"github.com/roach88/pend/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Nothing to do or nothing found (undo at the start of history, unknown id, fsck finding corrupt blobs)
	ExitCommandError = 2 // Command error (bad arguments, corrupt data on read, unusable store, bad config)
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeInvalidID   = "E002" // Malformed content identifier
	ErrCodeNotFound    = "E003" // Blob or pointer not found
	ErrCodeExhausted   = "E004" // Nothing to undo
	ErrCodeCorrupt     = "E005" // Blob or pointer does not match its identity
	ErrCodeUnavailable = "E006" // Storage could not be used
	ErrCodeConfig      = "E007" // Configuration rejected
	ErrCodeNoJournal   = "E008" // Command needs a journal and none is configured
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	reported bool // already written through an OutputFormatter
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classifyError maps an engine error to its response code and exit code.
func classifyError(err error) (string, int) {
	switch {
	case errors.Is(err, chain.ErrChainExhausted):
		return ErrCodeExhausted, ExitFailure
	case errors.Is(err, ident.ErrInvalidIdentifier):
		return ErrCodeInvalidID, ExitCommandError
	case errors.Is(err, chain.ErrBrokenChain), store.IsCorrupt(err), errors.Is(err, chain.ErrCorruptSnapshot):
		return ErrCodeCorrupt, ExitCommandError
	case store.IsNotFound(err):
		return ErrCodeNotFound, ExitFailure
	case store.IsUnavailable(err):
		return ErrCodeUnavailable, ExitCommandError
	case errors.Is(err, config.ErrInvalid):
		return ErrCodeConfig, ExitCommandError
	case errors.Is(err, errNoJournal):
		return ErrCodeNoJournal, ExitCommandError
	default:
		return ErrCodeGeneric, ExitCommandError
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Raw writes data unchanged in text mode and as the "data" field of a
// JSON envelope otherwise.
func (f *OutputFormatter) Raw(data []byte, envelope any) error {
	if f.Format == "json" {
		return f.Success(envelope)
	}
	_, err := f.Writer.Write(data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error goes to the diagnostic stream
	w := f.GetErrWriter()
	fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err through the formatter and returns the ExitError the
// command should return.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classifyError(err)
	if outErr := f.Error(code, fmt.Sprintf("%s: %v", message, err), nil); outErr != nil {
		return outErr
	}
	exitErr := WrapExitError(exit, message, err)
	exitErr.reported = true
	return exitErr
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
