// Package config provides functionality for parsing and validating
// pipeline configuration files (JSON/YAML/TOML).
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/wordsieve/runtime/pkg/sieve"
)

// ErrInvalidConfig is returned by Load when parsing or validation failed.
// The accompanying Result carries the individual errors.
var ErrInvalidConfig = errors.New("invalid pipeline configuration")

// Loader loads pipeline configurations from files.
type Loader struct {
	// basePath resolves relative configuration paths; empty means the working directory
	basePath string
}

// NewLoader creates a new configuration loader.
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// Load parses, validates and converts the configuration at path.
// On parse or validation failure it returns ErrInvalidConfig together with the
// Result so callers can report every error. The pipeline BaseDir is the
// directory of the configuration file.
func (l *Loader) Load(path string) (*sieve.Pipeline, *Result, error) {
	if l.basePath != "" && !filepath.IsAbs(path) {
		path = filepath.Join(l.basePath, path)
	}

	result := ParseConfig(path)
	if !result.IsValid() {
		return nil, result, ErrInvalidConfig
	}

	pipeline, err := ConvertToPipeline(result.Data)
	if err != nil {
		return nil, result, fmt.Errorf("converting configuration: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	pipeline.BaseDir = filepath.Dir(absPath)

	return pipeline, result, nil
}
