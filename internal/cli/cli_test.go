package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/wordsieve/runtime/internal/config"
	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/pkg/sieve"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid config", fmt.Errorf("loading: %w", config.ErrInvalidConfig), ExitValidationError},
		{"configuration", errhandling.NewConfigurationError("bad filter", nil), ExitValidationError},
		{"resource", fmt.Errorf("loading corpus: %w", errhandling.NewResourceError("words.txt", "missing", os.ErrNotExist)), ExitResourceError},
		{"io", errhandling.NewIOError("out.txt", "rename failed", nil), ExitOutputError},
		{"evaluation", errhandling.NewEvaluationError("script failed", nil), ExitRuntimeError},
		{"raw not exist", &os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}, ExitResourceError},
		{"unknown", errors.New("boom"), ExitRuntimeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCodeForResult(t *testing.T) {
	if got := ExitCodeForResult(&config.Result{}); got != ExitSuccess {
		t.Errorf("valid = %d", got)
	}
	if got := ExitCodeForResult(&config.Result{ValidationErrors: []config.ValidationError{{}}}); got != ExitValidationError {
		t.Errorf("validation = %d", got)
	}
	both := &config.Result{ParseErrors: []config.ParseError{{}}, ValidationErrors: []config.ValidationError{{}}}
	if got := ExitCodeForResult(both); got != ExitParseError {
		t.Errorf("parse = %d", got)
	}
}

func TestFormatErrorLocation(t *testing.T) {
	tests := []struct {
		path         string
		line, column int
		want         string
	}{
		{"", 3, 4, ""},
		{"a.json", 0, 0, "a.json"},
		{"a.json", 3, 0, "a.json:3"},
		{"a.json", 3, 4, "a.json:3:4"},
	}
	for _, tt := range tests {
		if got := formatErrorLocation(tt.path, tt.line, tt.column); got != tt.want {
			t.Errorf("formatErrorLocation(%q, %d, %d) = %q, want %q", tt.path, tt.line, tt.column, got, tt.want)
		}
	}
}

func TestPrintValidationErrors(t *testing.T) {
	errs := []config.ValidationError{
		{Path: "/pipeline/grouping/key", Message: "value must be one of 'firstLetter', 'lastLetter'", Type: "enum"},
		{Message: strings.Repeat("x", 100)},
	}

	var compact bytes.Buffer
	PrintValidationErrors(&compact, errs, false, false)
	out := compact.String()
	if !strings.Contains(out, "/pipeline/grouping/key: value must be one of") {
		t.Errorf("missing compact error:\n%s", out)
	}
	if !strings.Contains(out, "  /: "+strings.Repeat("x", 77)+"...") {
		t.Errorf("long message not truncated:\n%s", out)
	}
	if !strings.Contains(out, "Hint:") {
		t.Error("missing hint")
	}

	var verbose bytes.Buffer
	PrintValidationErrors(&verbose, errs[:1], true, true)
	if !strings.Contains(verbose.String(), "Type: enum") || strings.Contains(verbose.String(), "Hint:") {
		t.Errorf("unexpected verbose output:\n%s", verbose.String())
	}
}

func TestPrintRunError(t *testing.T) {
	var buf bytes.Buffer
	PrintRunError(&buf, &sieve.ExecutionResult{Error: &sieve.ExecutionError{
		Code:     "CORPUS_FAILED",
		Category: "resource_unavailable",
		Module:   "corpus",
		Message:  "word list cannot be opened",
		Details:  map[string]interface{}{"resource": "/data/words.txt"},
	}}, errors.New("ignored"))

	for _, want := range []string{"Stage: corpus", "Resource: /data/words.txt", "CORPUS_FAILED (resource_unavailable)"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	PrintRunError(&buf, nil, errors.New("nil pipeline"))
	if !strings.Contains(buf.String(), "Error: nil pipeline") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"Kind", "Type"}, [][]string{{"corpus", "wordlist"}, {"filter"}}, nil)
	for _, want := range []string{"KIND", "TYPE", "wordlist", "filter"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if RenderTable(nil, nil, nil) != "" {
		t.Error("expected empty table without headers")
	}
}

func TestPrintExecutionResult(t *testing.T) {
	started := time.Now()
	result := &sieve.ExecutionResult{
		RunID:         "run-1",
		StartedAt:     started,
		CompletedAt:   started.Add(time.Second),
		WordsWritten:  3,
		GroupsWritten: 1,
		GroupsDropped: 2,
		DryRunPreview: &sieve.ArtifactPreview{Target: "out.txt", Layout: "grouped", Bytes: 20, Lines: 3, Sample: []string{"a: ant,apple"}},
	}

	var buf bytes.Buffer
	PrintExecutionResult(&buf, result, OutputOptions{Verbose: true, DryRun: true})
	out := buf.String()
	for _, want := range []string{"Words written", "Groups dropped", "run-1", "Target: out.txt", "a: ant,apple", "(2 more lines)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintExecutionResult(&buf, result, OutputOptions{Quiet: true})
	if buf.Len() != 0 {
		t.Errorf("quiet output = %q", buf.String())
	}
}

func TestPrintMeaningTable(t *testing.T) {
	var buf bytes.Buffer
	PrintMeaningTable(&buf, []string{"dog", "xyzzy"}, []bool{true, false})
	if !strings.Contains(buf.String(), "yes") || !strings.Contains(buf.String(), "no") {
		t.Errorf("output = %s", buf.String())
	}
}
