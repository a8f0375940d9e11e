package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario name filter (substring)
	GoldenDir string // defaults to a "golden" directory beside the scenarios
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name        string   `json:"name"`
	Pass        bool     `json:"pass"`
	Steps       int      `json:"steps"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	Golden      string   `json:"golden,omitempty"` // "match", "mismatch", "updated" or empty when absent
	Errors      []string `json:"errors,omitempty"`
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
		Short: "Run game-rule scenarios",
		Long: `Run YAML scenarios through the game engine.

Each scenario seeds a state, applies a list of events and checks the
final state against its expectations. Every step is also checked against
the game invariants. When a golden trace exists for a scenario it must
match exactly.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, unparseable scenario, etc.)

Examples:
  guitarhero test ./scenarios
  guitarhero test ./scenarios --filter combo
  guitarhero test ./scenarios --update
  guitarhero test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only scenarios whose name contains this")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden", "", "golden trace directory (default: <scenarios-dir>/../golden)")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	info, err := os.Stat(scenariosDir)
	if err != nil || !info.IsDir() {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarios, err := harness.LoadDir(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}

	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = filepath.Join(filepath.Dir(filepath.Clean(scenariosDir)), "golden")
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarios)),
		Total:     len(scenarios),
	}

	for _, sc := range scenarios {
		formatter.VerboseLog("Running scenario: %s", sc.Name)

		sr, err := runScenario(sc, goldenDir, opts.Update)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("scenario %s", sc.Name), err)
		}
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.JSON() {
		if result.Failed > 0 {
			_ = formatter.Failure(CodeScenario, fmt.Sprintf("%d scenario(s) failed", result.Failed), result)
			return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
		}
		return formatter.Success(result)
	}

	outputTestText(cmd, result)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// runScenario executes one scenario and compares or rewrites its golden trace.
func runScenario(sc *harness.Scenario, goldenDir string, update bool) (ScenarioResult, error) {
	res, err := harness.Run(sc)
	if err != nil {
		return ScenarioResult{}, err
	}

	sr := ScenarioResult{
		Name:        sc.Name,
		Pass:        res.Pass,
		Steps:       len(res.Trace),
		Fingerprint: res.Fingerprint,
		Errors:      res.Errors,
	}

	trace := harness.FormatTrace(sc.Name, res)
	path := filepath.Join(goldenDir, sc.Name+".golden")

	if update {
		if err := os.MkdirAll(goldenDir, 0o755); err != nil {
			return ScenarioResult{}, fmt.Errorf("create golden dir: %w", err)
		}
		if err := os.WriteFile(path, trace, 0o644); err != nil {
			return ScenarioResult{}, fmt.Errorf("write golden: %w", err)
		}
		sr.Golden = "updated"
		return sr, nil
	}

	want, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return sr, nil
	case err != nil:
		return ScenarioResult{}, fmt.Errorf("read golden: %w", err)
	}

	if bytes.Equal(want, trace) {
		sr.Golden = "match"
	} else {
		sr.Golden = "mismatch"
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("trace differs from %s (rerun with --update to accept)", path))
	}
	return sr, nil
}

func outputTestText(cmd *cobra.Command, result TestResult) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Running %d scenario(s)...\n\n", result.Total)

	for _, s := range result.Scenarios {
		if s.Pass {
			note := ""
			if s.Golden != "" {
				note = " (golden " + s.Golden + ")"
			}
			fmt.Fprintf(w, "✓ %s%s\n", s.Name, note)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Results: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}
