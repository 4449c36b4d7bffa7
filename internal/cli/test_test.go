package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: fresh-undo
description: "Undo on a fresh store has nothing to do"
steps:
  - op: undo
    expect:
      error: exhausted
`

const failingScenario = `name: wrong-payload
description: "Expects the wrong payload"
steps:
  - op: save
    data: p1
  - op: load
    expect:
      payload: p2
`

func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestTestCommand_AllPass(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"fresh-undo.yaml": passingScenario,
		"notes.txt":       "ignored",
	})

	out, _, err := runPend(t, "", "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ fresh-undo")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_Failure(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"fresh-undo.yaml":    passingScenario,
		"wrong-payload.yaml": failingScenario,
	})

	out, _, err := runPend(t, "", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong-payload")
	assert.Contains(t, out, `payload = "p1", want "p2"`)
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"fresh-undo.yaml":    passingScenario,
		"wrong-payload.yaml": failingScenario,
	})

	out, _, err := runPend(t, "", "test", dir, "--filter", "fresh-*")
	require.NoError(t, err)
	assert.NotContains(t, out, "wrong-payload")
}

func TestTestCommand_JSON(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"bad.yml": "name: x\n",
	})

	out, _, err := runPend(t, "", "--format", "json", "test", dir)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Failed)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "bad.yml", resp.Data.Scenarios[0].Name)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "failed to load scenario")
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, _, err := runPend(t, "", "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_Empty(t *testing.T) {
	out, _, err := runPend(t, "", "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}
