package cli

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shelf/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario filter (glob pattern)
	GoldenDir string // defaults to <scenarios-dir>/golden
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
		Short: "Run filter scenarios against fixture tables",
		Long: `Run filter scenarios using the harness framework.

Each scenario declares fixture tables and a list of filter queries with
their expected outcome. Scenarios run offline: no config or API access is
needed. When a golden file named after the scenario exists, the rendered
trace must match it as well.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  shelf test ./scenarios
  shelf test ./scenarios --filter "coercion*"
  shelf test ./scenarios --golden ./golden --update
  shelf test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden", "", "golden file directory (default <scenarios-dir>/golden)")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		msg := fmt.Sprintf("scenarios directory not found: %s", scenariosDir)
		_ = out.Error(ErrCodeUsage, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = filepath.Join(scenariosDir, "golden")
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		_ = out.Error(ErrCodeUsage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if out.JSON() {
			return out.Success(TestResult{Scenarios: []ScenarioResult{}})
		}
		out.Println("No scenarios found.")
		return nil
	}

	runner := harness.New(harness.WithLogger(newLogger(out.GetErrWriter(), opts.Verbose)))
	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(cmd, runner, scenarioFile, goldenDir, opts.Update)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			out.Printf("✓ %s\n", scenResult.Name)
			result.Passed++
			continue
		}
		out.Printf("✗ %s\n", scenResult.Name)
		for _, e := range scenResult.Errors {
			out.Printf("  %s\n", e)
		}
		result.Failed++
	}

	return outputTestResult(out, result)
}

// findScenarioFiles finds all YAML scenario files under dir. The golden
// directory may live inside dir; it holds no YAML, so it is not skipped.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

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

// runScenario loads and executes one scenario, then checks or rewrites its
// golden file.
func runScenario(cmd *cobra.Command, runner *harness.Harness, scenarioFile, goldenDir string, update bool) ScenarioResult {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(scenarioFile),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := runner.Run(commandContext(cmd), scenario)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	rendered := []byte(result.Render())
	goldenPath := filepath.Join(goldenDir, scenario.Name+".golden")

	if update {
		if err := os.MkdirAll(goldenDir, 0755); err != nil {
			return ScenarioResult{Name: scenario.Name, Errors: []string{fmt.Sprintf("failed to create golden directory: %v", err)}}
		}
		if err := os.WriteFile(goldenPath, rendered, 0644); err != nil {
			return ScenarioResult{Name: scenario.Name, Errors: []string{fmt.Sprintf("failed to write golden file: %v", err)}}
		}
	} else {
		golden, err := os.ReadFile(goldenPath)
		switch {
		case os.IsNotExist(err):
			// No golden file: expectations only.
		case err != nil:
			result.AddError(fmt.Sprintf("failed to read golden file: %v", err))
		case !bytes.Equal(golden, rendered):
			result.AddError("trace does not match golden file (run with --update to regenerate)")
		}
	}

	return ScenarioResult{
		Name:   scenario.Name,
		Pass:   result.Pass,
		Errors: result.Errors,
	}
}

// outputTestResult writes the summary and turns failures into exit code 1.
func outputTestResult(out *OutputFormatter, result TestResult) error {
	if result.Failed == 0 {
		if out.JSON() {
			return out.Success(result)
		}
		out.Println()
		out.Printf("Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
		out.Println("✓ All scenarios passed")
		return nil
	}

	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if out.JSON() {
		if err := out.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: ErrCodeTestFailed, Message: msg},
		}); err != nil {
			return err
		}
	} else {
		out.Println()
		out.Printf("Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}
	return NewExitError(ExitFailure, msg)
}
