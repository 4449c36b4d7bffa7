package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pend/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run YAML scenarios against a scratch store",
		Long: `Run every scenario file in a directory against a fresh scratch store.

Scenarios never touch the configured store; each one gets its own
temporary directory.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  pend test ./scenarios
  pend test ./scenarios --filter "undo-*"
  pend test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}
	for _, scenarioFile := range scenarioFiles {
		formatter.VerboseLog("running %s", scenarioFile)
		scenResult := runScenario(commandContext(cmd), scenarioFile)
		result.Scenarios = append(result.Scenarios, scenResult)
		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputTestText(formatter, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// findScenarioFiles finds all YAML scenario files in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario loads and executes a single scenario in its own scratch
// directory.
func runScenario(ctx context.Context, scenarioFile string) ScenarioResult {
	name := filepath.Base(scenarioFile)

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)}}
	}
	name = scenario.Name

	dir, err := os.MkdirTemp("", "pend-scenario-")
	if err != nil {
		return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf("failed to create scratch dir: %v", err)}}
	}
	defer os.RemoveAll(dir)

	result, err := harness.Run(ctx, scenario, dir)
	if err != nil {
		return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf("execution failed: %v", err)}}
	}
	return ScenarioResult{Name: name, Pass: result.Pass, Errors: result.Errors}
}

func outputTestText(f *OutputFormatter, result TestResult) {
	w := f.Writer
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return
	}
	for _, s := range result.Scenarios {
		if s.Pass {
			fmt.Fprintf(w, "✓ %s\n", s.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
