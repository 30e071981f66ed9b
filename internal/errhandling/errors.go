// Package errhandling provides error types and classification.
// This file defines error categories, classification functions, and helper utilities
// used to report failures of a wordsieve run to the caller.
//
// No failure is retried: corpus and oracle loads and the artifact write are local
// and idempotent, so running the pipeline again is the recovery path.
package errhandling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// ErrorCategory represents the type/category of an error.
type ErrorCategory string

// Error categories for classification.
const (
	// CategoryResourceUnavailable represents a corpus or oracle resource that
	// cannot be loaded (missing file, unreadable database, absent WordNet data).
	CategoryResourceUnavailable ErrorCategory = "resource_unavailable"

	// CategoryIO represents a failure creating or writing the output artifact.
	CategoryIO ErrorCategory = "io"

	// CategoryConfiguration represents an invalid module configuration detected at runtime.
	CategoryConfiguration ErrorCategory = "configuration"

	// CategoryEvaluation represents a predicate that failed to evaluate
	// (expression runtime error, script exception).
	CategoryEvaluation ErrorCategory = "evaluation"

	// CategoryCanceled represents a run interrupted through its context.
	CategoryCanceled ErrorCategory = "canceled"

	// CategoryUnknown represents unclassified errors.
	CategoryUnknown ErrorCategory = "unknown"
)

// ClassifiedError wraps an error with classification metadata.
type ClassifiedError struct {
	// Category is the error classification category.
	Category ErrorCategory

	// Resource names the file, directory or database involved (may be empty).
	Resource string

	// Message is a human-readable error message.
	Message string

	// OriginalErr is the underlying error that was classified.
	OriginalErr error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Category, e.Message)
	if e.Resource != "" {
		msg = fmt.Sprintf("%s error (%s): %s", e.Category, e.Resource, e.Message)
	}
	if e.OriginalErr != nil {
		msg += ": " + e.OriginalErr.Error()
	}
	return msg
}

// Unwrap returns the original error for use with errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.OriginalErr
}

// ClassifyError classifies any error into a ClassifiedError.
//
// Classification rules:
//   - already classified errors are returned as-is
//   - context cancellation and deadlines: Canceled
//   - fs.ErrNotExist, fs.ErrPermission: ResourceUnavailable (resource = path)
//   - other *fs.PathError: IO
//   - anything else: Unknown
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return &ClassifiedError{
			Category: CategoryUnknown,
			Message:  "nil error",
		}
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewCanceledError(err)
	}

	var pathErr *fs.PathError
	hasPath := errors.As(err, &pathErr)

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		resource := ""
		if hasPath {
			resource = pathErr.Path
		}
		return NewResourceError(resource, "resource cannot be opened", err)
	}

	if hasPath {
		return NewIOError(pathErr.Path, fmt.Sprintf("%s failed", pathErr.Op), err)
	}

	return &ClassifiedError{
		Category:    CategoryUnknown,
		Message:     err.Error(),
		OriginalErr: err,
	}
}

// GetErrorCategory returns the error category for a given error.
// Returns CategoryUnknown for nil or unclassified errors.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category
	}

	return CategoryUnknown
}

// GetResource returns the resource named by the first ClassifiedError in the chain.
func GetResource(err error) string {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Resource
	}
	return ""
}

// IsCanceled reports whether err stems from context cancellation.
func IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	if GetErrorCategory(err) == CategoryCanceled {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// NewResourceError creates a ClassifiedError for an unavailable corpus or oracle resource.
func NewResourceError(resource, message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryResourceUnavailable,
		Resource:    resource,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewIOError creates a ClassifiedError for artifact write failures.
func NewIOError(resource, message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryIO,
		Resource:    resource,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewConfigurationError creates a ClassifiedError for invalid module configuration.
func NewConfigurationError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryConfiguration,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewEvaluationError creates a ClassifiedError for a predicate that failed on a word.
func NewEvaluationError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryEvaluation,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewCanceledError creates a ClassifiedError for an interrupted run.
func NewCanceledError(originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryCanceled,
		Message:     "run canceled",
		OriginalErr: originalErr,
	}
}
