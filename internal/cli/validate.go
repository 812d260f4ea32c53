package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqlsage/sqlsage/internal/rulepack"
)

// ValidationIssue is one validation finding, positioned when the CUE
// source position is known.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Source string            `json:"source"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [rules-dir]",
		Short: "Validate a rule pack without serving it",
		Long: `Validate a rule pack: compile the CUE source and run every schema
check the advisor would apply at load time, collecting all findings
instead of stopping at the first.

With no argument the --rules directory is validated, or the embedded
pack when no override is set.

Example:
  sqlsage validate ./my-pack
  sqlsage validate`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,  // Don't print usage on errors
		SilenceErrors: true,  // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	dir := opts.RulesDir
	if len(args) == 1 {
		dir = args[0]
	}

	var pack *rulepack.Pack
	var errs []error
	if dir != "" {
		formatter.VerboseLog("Validating rule pack in %s", dir)
		pack, errs = rulepack.LoadDir(dir, rulepack.ModeCollectAll)
	} else {
		formatter.VerboseLog("Validating embedded rule pack")
		pack, errs = rulepack.LoadEmbedded(rulepack.ModeCollectAll)
	}

	// A nil pack means loading never reached validation (directory missing,
	// CUE would not build). That is a command error, not a verdict.
	if pack == nil && len(errs) > 0 {
		code, message := parseLoadError(errs[0])
		return outputValidateError(formatter, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", pack.FileCount, pack.Source)

	if len(errs) > 0 {
		return outputValidationErrors(formatter, pack.Source, toIssues(errs))
	}

	return outputValidateSuccess(formatter, pack)
}

// CheckPack validates a rule pack directory without serving it.
// This is a helper function for external callers.
func CheckPack(dir string) ([]ValidationIssue, error) {
	pack, errs := rulepack.LoadDir(dir, rulepack.ModeCollectAll)
	if pack == nil && len(errs) > 0 {
		return nil, errs[0]
	}
	return toIssues(errs), nil
}

// toIssues converts load errors to validation issues with positions.
func toIssues(errs []error) []ValidationIssue {
	issues := make([]ValidationIssue, 0, len(errs))
	for _, err := range errs {
		var issue ValidationIssue
		var loadErr *rulepack.LoadError
		if errors.As(err, &loadErr) {
			issue.Code = loadErr.Code
			issue.Message = loadErr.Message
			if loadErr.Pos.IsValid() {
				issue.File = loadErr.Pos.Filename()
				issue.Line = loadErr.Pos.Line()
			}
		} else {
			issue.Code = rulepack.ErrCodeGeneric
			issue.Message = err.Error()
		}
		issues = append(issues, issue)
	}
	return issues
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, pack *rulepack.Pack) error {
	if formatter.Format == "json" {
		result := ValidationResult{Valid: true, Source: pack.Source}
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Rule pack valid: %d rule set(s), %d capability row(s)\n",
		len(pack.RuleSets), len(pack.Capabilities))
	return nil
}

// outputValidateError outputs a single load error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation findings.
func outputValidationErrors(formatter *OutputFormatter, source string, issues []ValidationIssue) error {
	if formatter.Format == "json" {
		result := ValidationResult{
			Valid:  false,
			Source: source,
			Errors: issues,
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range issues {
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", issue.File, issue.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}
