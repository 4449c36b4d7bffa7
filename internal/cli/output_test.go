package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pend/internal/chain"
	"github.com/roach88/pend/internal/config"
	"github.com/roach88/pend/internal/ident"
	"github.com/roach88/pend/internal/store"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E001", "save failed", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "save failed", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"id": "xyz"}
	err := formatter.Error("E002", "malformed id", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E001", "save failed", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "save failed")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"id": "xyz"}
	err := formatter.Error("E001", "save failed", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name     string
		verbose  bool
		wantLog  bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("stored %d byte(s)", 5)

			if tt.wantLog {
				assert.Contains(t, buf.String(), "stored 5 byte(s)")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    ErrCodeExhausted,
		Message: "nothing to undo",
		Details: []string{"pend/head"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, ErrCodeExhausted, decoded.Code)
	assert.Equal(t, "nothing to undo", decoded.Message)
}

func TestOutputFormatter_TextErrorUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "text",
		Writer:    out,
		ErrWriter: errOut,
	}

	require.NoError(t, formatter.Error(ErrCodeNotFound, "no such blob", nil))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error [E003]: no such blob")
}

func TestOutputFormatter_Raw(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}
	require.NoError(t, formatter.Raw([]byte("no newline"), nil))
	assert.Equal(t, "no newline", buf.String())

	buf.Reset()
	formatter.Format = "json"
	require.NoError(t, formatter.Raw([]byte("ignored"), map[string]string{"payload": "x"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"payload": "x"}, resp.Data)
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Fail("failed to undo", chain.ErrChainExhausted)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.ErrorIs(t, err, chain.ErrChainExhausted)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeExhausted, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "failed to undo")
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"exhausted", fmt.Errorf("undo: %w", chain.ErrChainExhausted), ErrCodeExhausted, ExitFailure},
		{"invalid id", ident.ErrInvalidIdentifier, ErrCodeInvalidID, ExitCommandError},
		{"not found", store.ErrNotFound, ErrCodeNotFound, ExitFailure},
		{"broken chain", fmt.Errorf("%w: %w", chain.ErrBrokenChain, store.ErrNotFound), ErrCodeCorrupt, ExitCommandError},
		{"corrupt", store.ErrCorrupt, ErrCodeCorrupt, ExitCommandError},
		{"unavailable", store.ErrStorageUnavailable, ErrCodeUnavailable, ExitCommandError},
		{"config", config.ErrInvalid, ErrCodeConfig, ExitCommandError},
		{"no journal", errNoJournal, ErrCodeNoJournal, ExitCommandError},
		{"other", errors.New("boom"), ErrCodeGeneric, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, exit := classifyError(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantExit, exit)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", WrapExitError(ExitFailure, "x", nil))))
}
