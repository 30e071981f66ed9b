// Package cli provides CLI output formatting and display functions.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/wordsieve/runtime/internal/config"
	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
	ExitResourceError   = 4
	ExitOutputError     = 5
)

// ExitCodeFor maps an error to the process exit code.
// Configuration errors found while building modules count as validation errors.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if errors.Is(err, config.ErrInvalidConfig) {
		return ExitValidationError
	}
	switch errhandling.ClassifyError(err).Category {
	case errhandling.CategoryConfiguration:
		return ExitValidationError
	case errhandling.CategoryResourceUnavailable:
		return ExitResourceError
	case errhandling.CategoryIO:
		return ExitOutputError
	default:
		return ExitRuntimeError
	}
}

// ExitCodeForResult picks the exit code of a loaded configuration: parse
// errors win over validation errors.
func ExitCodeForResult(result *config.Result) int {
	switch {
	case result == nil || result.IsValid():
		return ExitSuccess
	case len(result.ParseErrors) > 0:
		return ExitParseError
	default:
		return ExitValidationError
	}
}

// PrintParseErrors prints parse errors.
func PrintParseErrors(w io.Writer, errs []config.ParseError, verbose bool) {
	fmt.Fprintln(w, "✗ Parse errors:")
	for _, err := range errs {
		printSingleParseError(w, err, verbose)
	}
}

// printSingleParseError prints a single parse error with location information.
func printSingleParseError(w io.Writer, err config.ParseError, verbose bool) {
	location := formatErrorLocation(err.Path, err.Line, err.Column)

	if location != "" {
		fmt.Fprintf(w, "  %s: %s\n", location, err.Message)
	} else {
		fmt.Fprintf(w, "  %s\n", err.Message)
	}

	if verbose && err.Type != "" {
		fmt.Fprintf(w, "    Type: %s\n", err.Type)
	}
}

// formatErrorLocation formats the error location string (path:line:column).
func formatErrorLocation(path string, line, column int) string {
	if path == "" {
		return ""
	}

	location := path
	if line > 0 {
		location += fmt.Sprintf(":%d", line)
		if column > 0 {
			location += fmt.Sprintf(":%d", column)
		}
	}
	return location
}

// PrintValidationErrors prints validation errors.
func PrintValidationErrors(w io.Writer, errs []config.ValidationError, verbose, quiet bool) {
	fmt.Fprintln(w, "✗ Validation errors:")
	for _, err := range errs {
		printSingleValidationError(w, err, verbose)
	}
	if !quiet {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Hint: Use --verbose for detailed error information")
	}
}

func printSingleValidationError(w io.Writer, err config.ValidationError, verbose bool) {
	path := err.Path
	if path == "" {
		path = "/"
	}

	if !verbose {
		shortMsg := err.Message
		if len(shortMsg) > 80 {
			shortMsg = shortMsg[:77] + "..."
		}
		fmt.Fprintf(w, "  %s: %s\n", path, shortMsg)
		return
	}

	fmt.Fprintf(w, "  %s:\n", path)
	fmt.Fprintf(w, "    Message: %s\n", err.Message)
	if err.Type != "" {
		fmt.Fprintf(w, "    Type: %s\n", err.Type)
	}
	if err.Expected != "" {
		fmt.Fprintf(w, "    Expected: %s\n", err.Expected)
	}
}

// PrintConfigResult prints the parse and validation errors of result.
func PrintConfigResult(w io.Writer, result *config.Result, verbose, quiet bool) {
	if len(result.ParseErrors) > 0 {
		PrintParseErrors(w, result.ParseErrors, verbose)
		return
	}
	if len(result.ValidationErrors) > 0 {
		PrintValidationErrors(w, result.ValidationErrors, verbose, quiet)
	}
}

// PrintSetupError reports a failure that happened before the pipeline ran,
// naming the resource when one is known.
func PrintSetupError(w io.Writer, stage string, err error) {
	fmt.Fprintf(w, "✗ Failed to prepare %s: %s\n", stage, err)
}

// PrintRunError reports a failed execution.
func PrintRunError(w io.Writer, result *sieve.ExecutionResult, err error) {
	fmt.Fprintln(w, "✗ Pipeline execution failed")
	if result == nil || result.Error == nil {
		fmt.Fprintf(w, "  Error: %s\n", err)
		return
	}
	if result.Error.Module != "" {
		fmt.Fprintf(w, "  Stage: %s\n", result.Error.Module)
	}
	if resource, ok := result.Error.Details["resource"].(string); ok && resource != "" {
		fmt.Fprintf(w, "  Resource: %s\n", resource)
	}
	fmt.Fprintf(w, "  Code: %s (%s)\n", result.Error.Code, result.Error.Category)
	fmt.Fprintf(w, "  Error: %s\n", result.Error.Message)
}
