// Package output provides implementations for output modules.
// Output modules serialize a result set into the artifact and write it once.
package output

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wordsieve/runtime/pkg/sieve"
)

// Artifact layouts
const (
	LayoutFlat    = "flat"
	LayoutGrouped = "grouped"
)

// Letter cases
const (
	LetterCaseLower = "lower"
	LetterCaseUpper = "upper"
)

// Output module types
const (
	TypeFile   = "file"
	TypeStdout = "stdout"
)

// DefaultSampleLines is the number of artifact lines shown in a preview.
const DefaultSampleLines = 5

// maxSampleLineLength truncates long preview lines (flat artifacts are one line).
const maxSampleLineLength = 120

// Module represents an output module that writes the artifact.
type Module interface {
	// Write serializes the result set and writes it in one operation.
	// A failed write leaves no partial artifact behind.
	Write(ctx context.Context, result *sieve.ResultSet) error

	// Close releases any resources held by the module.
	Close() error
}

// PreviewOptions configures artifact previews.
type PreviewOptions struct {
	// SampleLines is the number of artifact lines to include
	SampleLines int
}

// PreviewableModule is implemented by output modules that can describe the
// artifact they would write without writing it (dry-run mode).
type PreviewableModule interface {
	Module
	Preview(result *sieve.ResultSet, opts PreviewOptions) (*sieve.ArtifactPreview, error)
}

// Layout returns the artifact layout of a result set.
func Layout(result *sieve.ResultSet) string {
	if result != nil && result.Grouped {
		return LayoutGrouped
	}
	return LayoutFlat
}

// Format serializes a result set.
//
// Flat: all words joined by "," on a single line without a trailing newline.
// Grouped: one "key: w1,w2\n" line per group in group order.
// An empty result produces an empty artifact in both layouts.
func Format(result *sieve.ResultSet, letterCase string) ([]byte, error) {
	var buf bytes.Buffer
	if result != nil {
		if result.Grouped {
			for _, g := range result.Groups {
				buf.WriteString(g.Key)
				buf.WriteString(": ")
				buf.WriteString(strings.Join(g.Words, ","))
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(strings.Join(result.Words, ","))
		}
	}

	switch letterCase {
	case "", LetterCaseLower:
		return buf.Bytes(), nil
	case LetterCaseUpper:
		return cases.Upper(language.Und).Bytes(buf.Bytes()), nil
	default:
		return nil, fmt.Errorf("unknown letter case %q", letterCase)
	}
}

// parseLetterCase reads the "letterCase" option.
func parseLetterCase(cfg map[string]interface{}) (string, error) {
	raw, ok := cfg["letterCase"]
	if !ok {
		return LetterCaseLower, nil
	}
	s, _ := raw.(string)
	switch s {
	case "", LetterCaseLower:
		return LetterCaseLower, nil
	case LetterCaseUpper:
		return LetterCaseUpper, nil
	default:
		return "", fmt.Errorf("letterCase must be %q or %q, got %v", LetterCaseLower, LetterCaseUpper, raw)
	}
}

// buildPreview describes a formatted artifact.
func buildPreview(target string, result *sieve.ResultSet, data []byte, opts PreviewOptions) *sieve.ArtifactPreview {
	sampleLines := opts.SampleLines
	if sampleLines <= 0 {
		sampleLines = DefaultSampleLines
	}

	var lines []string
	if len(data) > 0 {
		lines = strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	}

	preview := &sieve.ArtifactPreview{
		Target: target,
		Layout: Layout(result),
		Bytes:  len(data),
		Lines:  len(lines),
	}
	for i, line := range lines {
		if i == sampleLines {
			break
		}
		preview.Sample = append(preview.Sample, truncate(line, maxSampleLineLength))
	}
	return preview
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}
