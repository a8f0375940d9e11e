package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/config"
)

// ValidationIssue is one problem found in a config file.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Path       string            `json:"path"`
	Valid      bool              `json:"valid"`
	ConfigHash string            `json:"config_hash,omitempty"`
	Errors     []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.cue>",
		Short: "Validate a game configuration file",
		Long: `Validate a CUE configuration file against the game schema.

Reports every schema violation and semantic problem (duplicate key
bindings, a hit line beyond the track) with its position.

Exit codes:
  0 - Configuration is valid
  1 - Configuration has errors
  2 - Command error (file not found)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	formatter.VerboseLog("Validating %s", path)

	errs := config.Validate(path)
	result := ValidationResult{Path: path, Valid: len(errs) == 0}

	for _, err := range errs {
		issue := ValidationIssue{Code: config.ErrCodeGeneric, Message: err.Error()}
		var loadErr *config.LoadError
		if errors.As(err, &loadErr) {
			if loadErr.Code == config.ErrCodeNotFound {
				_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
				return WrapExitError(ExitCommandError, "config not found", loadErr)
			}
			issue.Code = loadErr.Code
			issue.Message = loadErr.Message
			if loadErr.Pos.IsValid() {
				issue.Line = loadErr.Pos.Line()
				issue.Column = loadErr.Pos.Column()
			}
		}
		result.Errors = append(result.Errors, issue)
	}

	if !result.Valid {
		if formatter.JSON() {
			_ = formatter.Failure(CodeInvalid, "configuration invalid", result)
		} else {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "✗ %s: %d error(s)\n", path, len(result.Errors))
			for _, issue := range result.Errors {
				if issue.Line > 0 {
					fmt.Fprintf(w, "  line %d:%d [%s] %s\n", issue.Line, issue.Column, issue.Code, issue.Message)
				} else {
					fmt.Fprintf(w, "  [%s] %s\n", issue.Code, issue.Message)
				}
			}
		}
		return NewExitError(ExitFailure, "configuration invalid")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return WrapExitError(ExitFailure, "configuration invalid", err)
	}
	result.ConfigHash = cfg.Hash()

	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (config %s)\n", path, shortHash(result.ConfigHash))
	return nil
}

// shortHash abbreviates a fingerprint for text output.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
