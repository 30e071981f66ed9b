// Package registry provides module registries for corpus, filter, oracle and
// output modules.
//
// # Overview
//
// Modules register their constructors by type string instead of being wired
// through switch statements, so a new module type needs no change to the
// factory or the runtime.
//
// # Adding a New Module
//
// To add a new corpus type (e.g., a "hunspell" dictionary reader):
//
//  1. Implement corpus.Module
//  2. Write a constructor matching CorpusConstructor
//  3. Register it from an init() function
//
// Example:
//
//	func init() {
//	    registry.RegisterCorpus("hunspell", func(cfg *sieve.ModuleConfig) (corpus.Module, error) {
//	        return NewHunspellFromConfig(cfg)
//	    })
//	}
//
// # Built-in Modules
//
// Built-in modules are registered by builtins.go at package initialization.
// Unknown types are configuration errors; there is no fallback module.
package registry

import (
	"context"
	"slices"
	"sync"

	"github.com/wordsieve/runtime/internal/modules/corpus"
	"github.com/wordsieve/runtime/internal/modules/filter"
	"github.com/wordsieve/runtime/internal/modules/output"
	"github.com/wordsieve/runtime/internal/oracle"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// CorpusConstructor creates a corpus module from configuration.
type CorpusConstructor func(cfg *sieve.ModuleConfig) (corpus.Module, error)

// FilterConstructor creates a shape filter module from configuration.
// The constructor receives the filter's index in the pipeline.
type FilterConstructor func(cfg sieve.ModuleConfig, index int) (filter.Module, error)

// OracleConstructor loads a meaning oracle. Loading is the one-time
// initialization of the oracle's resources and may block.
type OracleConstructor func(ctx context.Context, cfg *sieve.ModuleConfig) (oracle.Oracle, error)

// OutputConstructor creates an output module from configuration.
type OutputConstructor func(cfg *sieve.ModuleConfig) (output.Module, error)

// table is a concurrency-safe map of constructors.
type table[C any] struct {
	mu           sync.RWMutex
	constructors map[string]C
}

func newTable[C any]() *table[C] {
	return &table[C]{constructors: make(map[string]C)}
}

func (t *table[C]) register(moduleType string, c C) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.constructors[moduleType] = c
}

func (t *table[C]) get(moduleType string) (C, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.constructors[moduleType]
	return c, ok
}

func (t *table[C]) types() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	types := make([]string, 0, len(t.constructors))
	for name := range t.constructors {
		types = append(types, name)
	}
	slices.Sort(types)
	return types
}

func (t *table[C]) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.constructors = make(map[string]C)
}

var (
	corpusRegistry = newTable[CorpusConstructor]()
	filterRegistry = newTable[FilterConstructor]()
	oracleRegistry = newTable[OracleConstructor]()
	outputRegistry = newTable[OutputConstructor]()
)

// RegisterCorpus registers a corpus module constructor by type string.
// Registering an existing type overwrites the previous constructor.
func RegisterCorpus(moduleType string, constructor CorpusConstructor) {
	corpusRegistry.register(moduleType, constructor)
}

// RegisterFilter registers a filter module constructor by type string.
// Registering an existing type overwrites the previous constructor.
func RegisterFilter(moduleType string, constructor FilterConstructor) {
	filterRegistry.register(moduleType, constructor)
}

// RegisterOracle registers a meaning oracle constructor by type string.
// Registering an existing type overwrites the previous constructor.
func RegisterOracle(moduleType string, constructor OracleConstructor) {
	oracleRegistry.register(moduleType, constructor)
}

// RegisterOutput registers an output module constructor by type string.
// Registering an existing type overwrites the previous constructor.
func RegisterOutput(moduleType string, constructor OutputConstructor) {
	outputRegistry.register(moduleType, constructor)
}

// GetCorpusConstructor returns the constructor for a corpus type, or nil.
func GetCorpusConstructor(moduleType string) CorpusConstructor {
	c, _ := corpusRegistry.get(moduleType)
	return c
}

// GetFilterConstructor returns the constructor for a filter type, or nil.
func GetFilterConstructor(moduleType string) FilterConstructor {
	c, _ := filterRegistry.get(moduleType)
	return c
}

// GetOracleConstructor returns the constructor for an oracle type, or nil.
func GetOracleConstructor(moduleType string) OracleConstructor {
	c, _ := oracleRegistry.get(moduleType)
	return c
}

// GetOutputConstructor returns the constructor for an output type, or nil.
func GetOutputConstructor(moduleType string) OutputConstructor {
	c, _ := outputRegistry.get(moduleType)
	return c
}

// ListCorpusTypes returns the registered corpus types, sorted.
func ListCorpusTypes() []string { return corpusRegistry.types() }

// ListFilterTypes returns the registered filter types, sorted.
func ListFilterTypes() []string { return filterRegistry.types() }

// ListOracleTypes returns the registered oracle types, sorted.
func ListOracleTypes() []string { return oracleRegistry.types() }

// ListOutputTypes returns the registered output types, sorted.
func ListOutputTypes() []string { return outputRegistry.types() }

// ClearRegistries removes all registered constructors.
// This is intended for testing purposes only.
func ClearRegistries() {
	corpusRegistry.clear()
	filterRegistry.clear()
	oracleRegistry.clear()
	outputRegistry.clear()
}

// ResetRegistries restores the built-in registrations.
// This is intended for testing purposes only.
func ResetRegistries() {
	ClearRegistries()
	registerBuiltins()
}
