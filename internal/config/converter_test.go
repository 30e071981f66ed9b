package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wordsieve/runtime/pkg/sieve"
)

func TestConvertToPipeline_ValidConfig(t *testing.T) {
	parsed := ParseJSONFile("testdata/valid-pipeline.json")
	if !parsed.IsValid() {
		t.Fatalf("parse failed: %v", parsed.Errors)
	}

	pipeline, err := ConvertToPipeline(parsed.Data)
	if err != nil {
		t.Fatalf("ConvertToPipeline() error = %v", err)
	}

	if pipeline.ID != "first-letter-groups" {
		t.Errorf("Expected ID 'first-letter-groups', got %q", pipeline.ID)
	}
	if pipeline.Version != "1.0.0" {
		t.Errorf("Expected version '1.0.0', got %q", pipeline.Version)
	}
	if pipeline.Corpus == nil || pipeline.Corpus.Type != "wordlist" {
		t.Fatalf("Expected wordlist corpus, got %+v", pipeline.Corpus)
	}
	if pipeline.Corpus.Config["path"] != "words.txt" {
		t.Errorf("Expected corpus path 'words.txt', got %v", pipeline.Corpus.Config["path"])
	}
	if _, ok := pipeline.Corpus.Config["type"]; ok {
		t.Error("type should not be copied into module config")
	}

	if len(pipeline.Filters) != 2 {
		t.Fatalf("Expected 2 filters, got %d", len(pipeline.Filters))
	}
	if pipeline.Filters[0].Type != "excludes" || pipeline.Filters[1].Type != "palindrome" {
		t.Errorf("Expected filters in configured order, got %s, %s", pipeline.Filters[0].Type, pipeline.Filters[1].Type)
	}

	if pipeline.Meaning == nil || pipeline.Meaning.Type != "wordnet" {
		t.Fatalf("Expected wordnet meaning, got %+v", pipeline.Meaning)
	}
	if pipeline.Grouping == nil || pipeline.Grouping.Key != sieve.GroupByFirstLetter || pipeline.Grouping.MinSize != 2 {
		t.Errorf("Expected firstLetter grouping with minSize 2, got %+v", pipeline.Grouping)
	}
	if pipeline.Output == nil || pipeline.Output.Type != "file" {
		t.Fatalf("Expected file output, got %+v", pipeline.Output)
	}
	if pipeline.DryRunOptions == nil || pipeline.DryRunOptions.SampleLines != 3 {
		t.Errorf("Expected sampleLines 3, got %+v", pipeline.DryRunOptions)
	}
}

func TestConvertToPipeline_IdenticalAcrossFormats(t *testing.T) {
	var pipelines []*sieve.Pipeline
	for _, path := range []string{"testdata/valid-pipeline.json", "testdata/valid-pipeline.yaml", "testdata/valid-pipeline.toml"} {
		result := ParseConfig(path)
		if !result.IsValid() {
			t.Fatalf("%s: %v", path, result.AllErrors())
		}
		p, err := ConvertToPipeline(result.Data)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		pipelines = append(pipelines, p)
	}

	for i := 1; i < len(pipelines); i++ {
		if !reflect.DeepEqual(pipelines[0], pipelines[i]) {
			t.Errorf("pipeline %d differs:\n%+v\n%+v", i, pipelines[0], pipelines[i])
		}
	}
}

func TestConvertToPipeline_Defaults(t *testing.T) {
	data := map[string]interface{}{
		"pipeline": map[string]interface{}{
			"name":     "Level 1: Palindromes!",
			"version":  "1",
			"corpus":   map[string]interface{}{"type": "static", "words": []interface{}{"eye"}},
			"output":   map[string]interface{}{"type": "stdout"},
			"grouping": map[string]interface{}{"key": "lastLetter"},
		},
	}

	pipeline, err := ConvertToPipeline(data)
	if err != nil {
		t.Fatalf("ConvertToPipeline() error = %v", err)
	}
	if pipeline.ID != "level-1-palindromes" {
		t.Errorf("Expected derived ID 'level-1-palindromes', got %q", pipeline.ID)
	}
	if pipeline.Meaning != nil {
		t.Error("Expected no meaning stage when none is configured")
	}
	if pipeline.Grouping.MinSize != 1 {
		t.Errorf("Expected default minSize 1, got %d", pipeline.Grouping.MinSize)
	}
	if len(pipeline.Filters) != 0 {
		t.Errorf("Expected no filters, got %d", len(pipeline.Filters))
	}
}

func TestConvertToPipeline_Errors(t *testing.T) {
	module := map[string]interface{}{"type": "stdout"}
	tests := []struct {
		name    string
		data    map[string]interface{}
		wantErr string
	}{
		{"nil data", nil, "nil"},
		{"no pipeline", map[string]interface{}{"connector": map[string]interface{}{}}, "'pipeline'"},
		{"no name", map[string]interface{}{"pipeline": map[string]interface{}{"version": "1"}}, "pipeline.name"},
		{"no version", map[string]interface{}{"pipeline": map[string]interface{}{"name": "n"}}, "pipeline.version"},
		{"no corpus", map[string]interface{}{"pipeline": map[string]interface{}{"name": "n", "version": "1", "output": module}}, "pipeline.corpus"},
		{
			"filter without type",
			map[string]interface{}{"pipeline": map[string]interface{}{
				"name": "n", "version": "1", "corpus": module, "output": module,
				"filters": []interface{}{map[string]interface{}{"letters": "ab"}},
			}},
			"index 0",
		},
		{
			"bad group key",
			map[string]interface{}{"pipeline": map[string]interface{}{
				"name": "n", "version": "1", "corpus": module, "output": module,
				"grouping": map[string]interface{}{"key": "vowels"},
			}},
			"group key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertToPipeline(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoader_Load(t *testing.T) {
	pipeline, result, err := NewLoader("testdata").Load("valid-pipeline.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v (%v)", err, result.AllErrors())
	}

	wantDir, _ := filepath.Abs("testdata")
	if pipeline.BaseDir != wantDir {
		t.Errorf("BaseDir = %q, want %q", pipeline.BaseDir, wantDir)
	}
	if result.Format != FormatYAML {
		t.Errorf("Format = %q, want yaml", result.Format)
	}
}

func TestLoader_LoadInvalid(t *testing.T) {
	_, result, err := NewLoader("").Load("testdata/invalid-missing-corpus.json")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if len(result.ValidationErrors) == 0 {
		t.Error("expected validation errors in result")
	}
}

func TestLoader_AbsolutePathIgnoresBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p.json")
	content := `{"schemaVersion":"1.0","pipeline":{"name":"abs","version":"1",` +
		`"corpus":{"type":"static","words":["noon"]},"output":{"type":"stdout"}}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	pipeline, _, err := NewLoader("testdata").Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if pipeline.BaseDir != dir {
		t.Errorf("BaseDir = %q, want %q", pipeline.BaseDir, dir)
	}
}
