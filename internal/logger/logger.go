// Package logger provides structured logging functionality.
// It wraps the standard log/slog package for consistent logging across the runtime.
//
// This package provides execution context helpers for consistent pipeline logging,
// including helpers for execution start/end, stage start/end, and metrics logging.
// All helpers use structured logging with consistent field names (snake_case).
//
// The package supports two output formats:
//   - JSON (default): Machine-readable structured logging
//   - Human: Human-readable console output with colors and prefixes
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the default logger instance.
var Logger *slog.Logger

// output is where console handlers write. Tests may swap it.
var output io.Writer = os.Stderr

func init() {
	Logger = newConsoleLogger(slog.LevelInfo, FormatJSON)
}

// OutputFormat represents the log output format
type OutputFormat int

const (
	// FormatJSON is the default machine-readable JSON format
	FormatJSON OutputFormat = iota
	// FormatHuman is a human-readable console format with colors and prefixes
	FormatHuman
)

// ParseFormat converts a flag value ("json", "human") to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "human", "text", "console":
		return FormatHuman, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format %q (expected json or human)", s)
	}
}

// SetLevelAndFormat sets both the log level and format.
func SetLevelAndFormat(level slog.Level, format OutputFormat) {
	Logger = newConsoleLogger(level, format)
}

// SetOutput redirects console logging and returns the previous writer.
// The current level and format must be re-applied after calling it.
func SetOutput(w io.Writer) io.Writer {
	prev := output
	output = w
	return prev
}

func newConsoleLogger(level slog.Level, format OutputFormat) *slog.Logger {
	return slog.New(newConsoleHandler(level, format))
}

func newConsoleHandler(level slog.Level, format OutputFormat) slog.Handler {
	if format == FormatHuman {
		return NewHumanHandler(output, &HumanHandlerOptions{
			Level:     level,
			UseColors: isTerminal(output),
		})
	}
	return slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// =============================================================================
// Execution Context Types
// =============================================================================

// ExecutionContext contains context information for pipeline execution logging.
type ExecutionContext struct {
	// PipelineID is the unique identifier for the pipeline (required)
	PipelineID string
	// PipelineName is the human-readable name of the pipeline
	PipelineName string
	// RunID identifies one execution of the pipeline
	RunID string
	// Stage is the current execution stage (corpus, filter, meaning, output)
	Stage string
	// ModuleType is the type of module being executed (wordlist, palindrome, ...)
	ModuleType string
	// DryRun indicates if this is a dry-run execution
	DryRun bool
	// FilterIndex is the index of the current filter; only logged for the filter stage
	FilterIndex int
}

// ExecutionError contains structured error information for logging.
type ExecutionError struct {
	// Code is the error code (e.g., CORPUS_FAILED, ORACLE_FAILED)
	Code string
	// Message is the human-readable error message
	Message string
}

// ErrorContext contains structured context for error logging.
// Use this with LogError() for consistent, actionable error logs.
type ErrorContext struct {
	PipelineID string
	RunID      string
	Stage      string

	ErrorCode     string
	ErrorCategory string
	ErrorMessage  string
	Err           error

	// Resource names the corpus, oracle or artifact path involved
	Resource string
	Duration time.Duration

	Extra map[string]interface{}
}

// ExecutionMetrics contains per-stage counts and timings for a run.
type ExecutionMetrics struct {
	TotalDuration   time.Duration
	CorpusDuration  time.Duration
	FilterDuration  time.Duration
	MeaningDuration time.Duration
	OutputDuration  time.Duration

	CandidatesLoaded int
	CandidatesUnique int
	ShapeRejected    int
	MeaningRejected  int
	OracleQueries    int
	WordsWritten     int
}

// =============================================================================
// Execution Context Helpers
// =============================================================================

// WithExecution returns a logger with execution context attached.
// Only non-empty fields are included in the log output.
func WithExecution(ctx ExecutionContext) *slog.Logger {
	return Logger.With(buildContextAttrs(ctx)...)
}

// LogExecutionStart logs the start of a pipeline execution.
func LogExecutionStart(ctx ExecutionContext) {
	Logger.Info("execution started", buildContextAttrs(ctx)...)
}

// LogExecutionEnd logs the completion of a pipeline execution.
func LogExecutionEnd(ctx ExecutionContext, status string, wordsWritten int, duration time.Duration) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.String("status", status),
		slog.Int("words_written", wordsWritten),
		slog.Duration("duration", duration),
	)
	Logger.Info("execution completed", attrs...)
}

// LogStageStart logs the start of a pipeline stage.
func LogStageStart(ctx ExecutionContext) {
	Logger.Info("stage started", buildContextAttrs(ctx)...)
}

// LogStageEnd logs the completion of a pipeline stage.
// If err is non-nil, logs as an error with error details.
func LogStageEnd(ctx ExecutionContext, wordCount int, duration time.Duration, err *ExecutionError) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.Int("word_count", wordCount),
		slog.Duration("duration", duration),
	)

	if err != nil {
		attrs = append(attrs,
			slog.String("error_code", err.Code),
			slog.String("error", err.Message),
		)
		Logger.Error("stage failed", attrs...)
		return
	}
	Logger.Info("stage completed", attrs...)
}

// LogMetrics logs the counts and timings collected for a run.
func LogMetrics(ctx ExecutionContext, m ExecutionMetrics) {
	attrs := buildContextAttrs(ctx)
	attrs = append(attrs,
		slog.Duration("total_duration", m.TotalDuration),
		slog.Duration("corpus_duration", m.CorpusDuration),
		slog.Duration("filter_duration", m.FilterDuration),
		slog.Duration("meaning_duration", m.MeaningDuration),
		slog.Duration("output_duration", m.OutputDuration),
		slog.Int("candidates_loaded", m.CandidatesLoaded),
		slog.Int("candidates_unique", m.CandidatesUnique),
		slog.Int("shape_rejected", m.ShapeRejected),
		slog.Int("meaning_rejected", m.MeaningRejected),
		slog.Int("oracle_queries", m.OracleQueries),
		slog.Int("words_written", m.WordsWritten),
		slog.String("summary", FormatMetricsHuman(m)),
	)
	Logger.Info("execution metrics", attrs...)
}

// LogError logs an error with full execution context.
func LogError(message string, errCtx ErrorContext) {
	attrs := make([]any, 0, 16)

	if errCtx.PipelineID != "" {
		attrs = append(attrs, slog.String("pipeline_id", errCtx.PipelineID))
	}
	if errCtx.RunID != "" {
		attrs = append(attrs, slog.String("run_id", errCtx.RunID))
	}
	if errCtx.Stage != "" {
		attrs = append(attrs, slog.String("stage", errCtx.Stage))
	}
	if errCtx.ErrorCode != "" {
		attrs = append(attrs, slog.String("error_code", errCtx.ErrorCode))
	}
	if errCtx.ErrorCategory != "" {
		attrs = append(attrs, slog.String("error_category", errCtx.ErrorCategory))
	}
	if errCtx.ErrorMessage != "" {
		attrs = append(attrs, slog.String("error", errCtx.ErrorMessage))
	}
	if errCtx.Err != nil {
		attrs = append(attrs, slog.String("error_type", fmt.Sprintf("%T", errCtx.Err)))

		chain := []string{errCtx.Err.Error()}
		for cur := errors.Unwrap(errCtx.Err); cur != nil; cur = errors.Unwrap(cur) {
			chain = append(chain, cur.Error())
		}
		if len(chain) > 1 {
			attrs = append(attrs, slog.String("error_chain", strings.Join(chain, " -> ")))
		}
	}
	if errCtx.Resource != "" {
		attrs = append(attrs, slog.String("resource", errCtx.Resource))
	}
	if errCtx.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", errCtx.Duration))
	}
	for k, v := range errCtx.Extra {
		attrs = append(attrs, slog.Any(k, v))
	}

	Logger.Error(message, attrs...)
}

// buildContextAttrs builds a slice of slog attributes from an ExecutionContext.
func buildContextAttrs(ctx ExecutionContext) []any {
	attrs := make([]any, 0, 8)
	attrs = append(attrs, slog.String("pipeline_id", ctx.PipelineID))

	if ctx.PipelineName != "" {
		attrs = append(attrs, slog.String("pipeline_name", ctx.PipelineName))
	}
	if ctx.RunID != "" {
		attrs = append(attrs, slog.String("run_id", ctx.RunID))
	}
	if ctx.Stage != "" {
		attrs = append(attrs, slog.String("stage", ctx.Stage))
	}
	if ctx.ModuleType != "" {
		attrs = append(attrs, slog.String("module_type", ctx.ModuleType))
	}
	if ctx.DryRun {
		attrs = append(attrs, slog.Bool("dry_run", true))
	}
	if ctx.Stage == "filter" {
		attrs = append(attrs, slog.Int("filter_index", ctx.FilterIndex))
	}
	return attrs
}
