package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wordsieve/runtime/internal/logger"
)

// captureJSON swaps the package logger for a JSON logger writing to the returned buffer.
func captureJSON(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := logger.Logger
	t.Cleanup(func() { logger.Logger = orig })
	logger.Logger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))
	return &buf
}

func decodeLast(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log output: %v", err)
	}
	return entry
}

func TestLoggerInitialization(t *testing.T) {
	if logger.Logger == nil {
		t.Fatal("Logger should be initialized on package load")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    logger.OutputFormat
		wantErr bool
	}{
		{"", logger.FormatJSON, false},
		{"json", logger.FormatJSON, false},
		{"HUMAN", logger.FormatHuman, false},
		{"console", logger.FormatHuman, false},
		{"xml", logger.FormatJSON, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logger.ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWithExecution(t *testing.T) {
	buf := captureJSON(t, slog.LevelDebug)

	logger.WithExecution(logger.ExecutionContext{
		PipelineID:   "palindromes",
		PipelineName: "Palindromes",
		RunID:        "run-1",
		Stage:        "meaning",
		ModuleType:   "wordnet",
	}).Info("test log")

	entry := decodeLast(t, buf)
	for key, want := range map[string]string{
		"pipeline_id":   "palindromes",
		"pipeline_name": "Palindromes",
		"run_id":        "run-1",
		"stage":         "meaning",
		"module_type":   "wordnet",
	} {
		if entry[key] != want {
			t.Errorf("Expected %s %q, got %v", key, want, entry[key])
		}
	}
	if _, ok := entry["filter_index"]; ok {
		t.Error("filter_index should only be logged for the filter stage")
	}
}

func TestWithExecution_FilterIndex(t *testing.T) {
	buf := captureJSON(t, slog.LevelDebug)

	logger.WithExecution(logger.ExecutionContext{
		PipelineID:  "p",
		Stage:       "filter",
		FilterIndex: 2,
	}).Info("filter log")

	entry := decodeLast(t, buf)
	if idx, ok := entry["filter_index"].(float64); !ok || int(idx) != 2 {
		t.Errorf("Expected filter_index 2, got %v", entry["filter_index"])
	}
}

func TestLogExecutionEnd(t *testing.T) {
	buf := captureJSON(t, slog.LevelInfo)

	logger.LogExecutionEnd(logger.ExecutionContext{PipelineID: "p"}, "success", 42, 2*time.Second)

	entry := decodeLast(t, buf)
	if entry["msg"] != "execution completed" {
		t.Errorf("Expected msg 'execution completed', got %v", entry["msg"])
	}
	if entry["status"] != "success" {
		t.Errorf("Expected status 'success', got %v", entry["status"])
	}
	if n, ok := entry["words_written"].(float64); !ok || int(n) != 42 {
		t.Errorf("Expected words_written 42, got %v", entry["words_written"])
	}
	if entry["duration"] == nil {
		t.Error("Expected duration to be present")
	}
}

func TestLogStageEnd(t *testing.T) {
	tests := []struct {
		name      string
		err       *logger.ExecutionError
		wantMsg   string
		wantLevel string
	}{
		{name: "success", wantMsg: "stage completed", wantLevel: "INFO"},
		{
			name:      "failure",
			err:       &logger.ExecutionError{Code: "ORACLE_FAILED", Message: "wordnet index missing"},
			wantMsg:   "stage failed",
			wantLevel: "ERROR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureJSON(t, slog.LevelInfo)

			logger.LogStageEnd(logger.ExecutionContext{PipelineID: "p", Stage: "meaning"}, 7, time.Second, tt.err)

			entry := decodeLast(t, buf)
			if entry["msg"] != tt.wantMsg {
				t.Errorf("Expected msg %q, got %v", tt.wantMsg, entry["msg"])
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("Expected level %q, got %v", tt.wantLevel, entry["level"])
			}
			if n, ok := entry["word_count"].(float64); !ok || int(n) != 7 {
				t.Errorf("Expected word_count 7, got %v", entry["word_count"])
			}
			if tt.err != nil && entry["error_code"] != tt.err.Code {
				t.Errorf("Expected error_code %q, got %v", tt.err.Code, entry["error_code"])
			}
		})
	}
}

func TestLogMetrics(t *testing.T) {
	buf := captureJSON(t, slog.LevelInfo)

	logger.LogMetrics(logger.ExecutionContext{PipelineID: "p"}, logger.ExecutionMetrics{
		TotalDuration:    time.Second,
		CandidatesLoaded: 10,
		CandidatesUnique: 8,
		ShapeRejected:    5,
		MeaningRejected:  1,
		OracleQueries:    3,
		WordsWritten:     2,
	})

	entry := decodeLast(t, buf)
	for key, want := range map[string]int{
		"candidates_loaded": 10,
		"candidates_unique": 8,
		"shape_rejected":    5,
		"meaning_rejected":  1,
		"oracle_queries":    3,
		"words_written":     2,
	} {
		if got, ok := entry[key].(float64); !ok || int(got) != want {
			t.Errorf("Expected %s %d, got %v", key, want, entry[key])
		}
	}
	if entry["summary"] != "Kept 2 of 8 candidates in 1.00s, 5 failed shape, 1 without meaning" {
		t.Errorf("Expected summary, got %v", entry["summary"])
	}
}

func TestLogError(t *testing.T) {
	buf := captureJSON(t, slog.LevelInfo)

	base := errors.New("open index.noun: no such file or directory")
	logger.LogError("oracle load failed", logger.ErrorContext{
		PipelineID:    "p",
		Stage:         "meaning",
		ErrorCode:     "ORACLE_FAILED",
		ErrorCategory: "resource_unavailable",
		Err:           fmt.Errorf("loading wordnet: %w", base),
		Resource:      "/usr/share/wordnet",
		Extra:         map[string]interface{}{"filterIndex": 1},
	})

	entry := decodeLast(t, buf)
	if entry["resource"] != "/usr/share/wordnet" {
		t.Errorf("Expected resource, got %v", entry["resource"])
	}
	if entry["error_category"] != "resource_unavailable" {
		t.Errorf("Expected error_category, got %v", entry["error_category"])
	}
	chain, _ := entry["error_chain"].(string)
	if !strings.Contains(chain, " -> ") {
		t.Errorf("Expected error_chain with unwrapped errors, got %q", chain)
	}
	if idx, ok := entry["filterIndex"].(float64); !ok || int(idx) != 1 {
		t.Errorf("Expected filterIndex from Extra, got %v", entry["filterIndex"])
	}
	if _, ok := entry["duration"]; ok {
		t.Error("zero duration should not be logged")
	}
}

func TestHumanHandler(t *testing.T) {
	var buf bytes.Buffer
	handler := logger.NewHumanHandler(&buf, &logger.HumanHandlerOptions{Level: slog.LevelInfo})

	slog.New(handler).With("stage", "corpus").Info("test message", "key", "value")

	out := buf.String()
	for _, want := range []string{"test message", "ℹ", "key=value", "stage=corpus"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestHumanHandlerLevels(t *testing.T) {
	tests := []struct {
		level          slog.Level
		msg            string
		expectedPrefix string
	}{
		{slog.LevelError, "test", "✗"},
		{slog.LevelWarn, "test", "⚠"},
		{slog.LevelInfo, "test", "ℹ"},
		{slog.LevelInfo, "stage completed", "✓"},
		{slog.LevelDebug, "test", "·"},
	}

	for _, tt := range tests {
		t.Run(tt.level.String()+"/"+tt.msg, func(t *testing.T) {
			var buf bytes.Buffer
			handler := logger.NewHumanHandler(&buf, &logger.HumanHandlerOptions{Level: slog.LevelDebug})

			slog.New(handler).Log(context.Background(), tt.level, tt.msg)

			if !strings.Contains(buf.String(), tt.expectedPrefix) {
				t.Errorf("Expected prefix %q for level %s, got: %s", tt.expectedPrefix, tt.level, buf.String())
			}
		})
	}
}

func TestHumanHandlerDuration(t *testing.T) {
	var buf bytes.Buffer
	handler := logger.NewHumanHandler(&buf, &logger.HumanHandlerOptions{Level: slog.LevelInfo})

	slog.New(handler).Info("duration test", "duration", 2500*time.Millisecond)

	if !strings.Contains(buf.String(), "duration=2.50s") {
		t.Errorf("Expected output to contain 'duration=2.50s', got: %s", buf.String())
	}
}

func TestFormatMetricsHuman(t *testing.T) {
	formatted := logger.FormatMetricsHuman(logger.ExecutionMetrics{
		TotalDuration:    5 * time.Second,
		CandidatesUnique: 1000,
		ShapeRejected:    900,
		MeaningRejected:  40,
		WordsWritten:     60,
	})

	for _, want := range []string{"Kept 60 of 1000", "5.00s", "900 failed shape", "40 without meaning"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Expected %q in %q", want, formatted)
		}
	}
}

func TestSetLogFile(t *testing.T) {
	orig := logger.Logger
	prevOut := logger.SetOutput(&bytes.Buffer{})
	defer func() {
		logger.CloseLogFile()
		logger.SetOutput(prevOut)
		logger.Logger = orig
	}()

	path := filepath.Join(t.TempDir(), "wordsieve.log")
	if err := logger.SetLogFile(path, slog.LevelInfo, logger.FormatHuman); err != nil {
		t.Fatalf("SetLogFile failed: %v", err)
	}

	logger.Info("file entry", slog.String("pipeline_id", "p"))
	logger.CloseLogFile()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"file entry"`) {
		t.Errorf("log file should contain JSON entry, got: %s", data)
	}
}

func TestSetLogFile_InvalidPath(t *testing.T) {
	orig := logger.Logger
	defer func() { logger.Logger = orig }()

	err := logger.SetLogFile(filepath.Join(t.TempDir(), "missing", "dir", "x.log"), slog.LevelInfo, logger.FormatJSON)
	if err == nil {
		t.Fatal("expected error for unwritable log path")
	}
}
