package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/grocer/internal/seed"
)

// ValidationError is one problem found in a seed directory.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Items  int               `json:"items"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <seed-dir>",
		Short: "Validate seed files without importing them",
		Long: `Validate the CUE seed files in seed-dir against the item schema.

Checks syntax, that every quantity is a non-negative integer and that every
price is a decimal string. The database is not opened.

Examples:
  grocer validate ./seed
  grocer validate ./seed --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, seedDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	entries, err := seed.LoadDir(seedDir)
	if err != nil {
		return outputSeedLoadError(formatter, err)
	}

	for _, e := range entries {
		formatter.VerboseLog("Validated item: %s", e.Name)
	}

	return outputValidateSuccess(formatter, len(entries))
}

// outputSeedLoadError reports a seed.LoadDir failure. Missing or empty
// directories are command errors; invalid content is a validation failure.
func outputSeedLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *seed.LoadError
	if !errors.As(err, &loadErr) {
		return report(formatter, WrapExitError(ExitCommandError, "failed to load seed files", err), ErrCodeGeneric)
	}

	switch loadErr.Code {
	case seed.ErrCodeNotFound, seed.ErrCodeNoFiles:
		_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
		return &ExitError{Code: ExitCommandError, Message: loadErr.Error(), Err: err, Reported: true}
	}

	verr := ValidationError{Code: loadErr.Code, Message: loadErr.Message}
	if loadErr.Pos.IsValid() {
		verr.File = loadErr.Pos.Filename()
		verr.Line = loadErr.Pos.Line()
	}
	return outputValidationErrors(formatter, []ValidationError{verr})
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, items int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Items: items})
	}

	fmt.Fprintf(formatter.Writer, "✓ All seed files valid (%d item(s))\n", items)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	exitErr := &ExitError{
		Code:     ExitFailure, // Validation failures = exit code 1
		Message:  fmt.Sprintf("validation failed with %d error(s)", len(errs)),
		Reported: true,
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return exitErr
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", err.File, err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return exitErr
}
