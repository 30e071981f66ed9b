// Package errhandling provides error types and classification for pipeline execution.
package errhandling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestErrorCategory tests error category constants and their string values.
func TestErrorCategory(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		expected string
	}{
		{CategoryResourceUnavailable, "resource_unavailable"},
		{CategoryIO, "io"},
		{CategoryConfiguration, "configuration"},
		{CategoryEvaluation, "evaluation"},
		{CategoryCanceled, "canceled"},
		{CategoryUnknown, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if string(tt.category) != tt.expected {
				t.Errorf("ErrorCategory = %v, want %v", tt.category, tt.expected)
			}
		})
	}
}

// TestClassifiedError tests the ClassifiedError type.
func TestClassifiedError(t *testing.T) {
	t.Run("Error message names resource", func(t *testing.T) {
		err := NewResourceError("/usr/share/wordnet", "wordnet index missing", errors.New("no such file"))

		errorStr := err.Error()
		for _, want := range []string{"resource_unavailable", "/usr/share/wordnet", "wordnet index missing", "no such file"} {
			if !strings.Contains(errorStr, want) {
				t.Errorf("Error() = %q, want to contain %q", errorStr, want)
			}
		}
	})

	t.Run("Error message without resource", func(t *testing.T) {
		err := NewEvaluationError("script threw", nil)
		if err.Error() != "evaluation error: script threw" {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("Unwrap returns original error", func(t *testing.T) {
		original := errors.New("original error")
		err := NewIOError("out.txt", "rename failed", original)

		if err.Unwrap() != original {
			t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), original)
		}
		if !errors.Is(err, original) {
			t.Error("errors.Is should match original error")
		}
	})
}

// TestClassifyError tests the general error classification function.
func TestClassifyError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.txt")
	_, notExist := os.Open(missing)

	tests := []struct {
		name         string
		err          error
		wantCategory ErrorCategory
		wantResource string
	}{
		{"nil", nil, CategoryUnknown, ""},
		{"already classified", NewConfigurationError("bad", nil), CategoryConfiguration, ""},
		{"wrapped classified", fmt.Errorf("outer: %w", NewIOError("a.txt", "x", nil)), CategoryIO, "a.txt"},
		{"canceled", context.Canceled, CategoryCanceled, ""},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), CategoryCanceled, ""},
		{"not exist", notExist, CategoryResourceUnavailable, missing},
		{"permission", &fs.PathError{Op: "open", Path: "/root/x", Err: fs.ErrPermission}, CategoryResourceUnavailable, "/root/x"},
		{"other path error", &fs.PathError{Op: "write", Path: "out.txt", Err: errors.New("disk full")}, CategoryIO, "out.txt"},
		{"generic", errors.New("boom"), CategoryUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %v, want %v", got.Category, tt.wantCategory)
			}
			if got.Resource != tt.wantResource {
				t.Errorf("Resource = %q, want %q", got.Resource, tt.wantResource)
			}
		})
	}
}

// TestGetErrorCategory tests category extraction from error chains.
func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, CategoryUnknown},
		{"plain", errors.New("x"), CategoryUnknown},
		{"classified", NewResourceError("db", "x", nil), CategoryResourceUnavailable},
		{"wrapped", fmt.Errorf("stage: %w", NewEvaluationError("x", nil)), CategoryEvaluation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCategory(tt.err); got != tt.want {
				t.Errorf("GetErrorCategory() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetResource(t *testing.T) {
	err := fmt.Errorf("loading corpus: %w", NewResourceError("words.txt", "missing", nil))
	if got := GetResource(err); got != "words.txt" {
		t.Errorf("GetResource() = %q, want words.txt", got)
	}
	if got := GetResource(errors.New("x")); got != "" {
		t.Errorf("GetResource() = %q, want empty", got)
	}
}

func TestIsCanceled(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"raw canceled", fmt.Errorf("x: %w", context.Canceled), true},
		{"classified", NewCanceledError(nil), true},
		{"other", NewIOError("a", "b", nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCanceled(tt.err); got != tt.want {
				t.Errorf("IsCanceled() = %v, want %v", got, tt.want)
			}
		})
	}
}
