// Package factory provides module creation functions for the pipeline runtime.
// It centralizes the logic for instantiating corpus, filter, oracle and output
// modules from their configuration using the module registry.
//
// # Module Creation
//
// The factory looks up constructors by type in the registry. Before a
// constructor runs, relative paths in the module config ("path", "paths",
// "dir", "scriptFile") are resolved against the directory of the pipeline
// configuration file. Unknown module types are configuration errors.
//
// # Adding New Module Types
//
// To add a new module type, see the documentation in internal/registry.
// You do NOT need to modify this factory; just register your constructor.
package factory

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/internal/modules/corpus"
	"github.com/wordsieve/runtime/internal/modules/filter"
	"github.com/wordsieve/runtime/internal/modules/output"
	"github.com/wordsieve/runtime/internal/oracle"
	"github.com/wordsieve/runtime/internal/pathutil"
	"github.com/wordsieve/runtime/internal/registry"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// resolved returns a copy of cfg with its paths resolved against baseDir.
func resolved(cfg sieve.ModuleConfig, baseDir string) sieve.ModuleConfig {
	return sieve.ModuleConfig{Type: cfg.Type, Config: pathutil.ResolveConfig(cfg.Config, baseDir)}
}

func unknownType(kind, moduleType string, available []string) error {
	return errhandling.NewConfigurationError(
		fmt.Sprintf("unknown %s type %q (available: %s)", kind, moduleType, strings.Join(available, ", ")), nil)
}

// CreateCorpusModule creates the corpus module of a pipeline.
func CreateCorpusModule(cfg *sieve.ModuleConfig, baseDir string) (corpus.Module, error) {
	if cfg == nil {
		return nil, errhandling.NewConfigurationError("pipeline has no corpus", nil)
	}

	constructor := registry.GetCorpusConstructor(cfg.Type)
	if constructor == nil {
		return nil, unknownType("corpus", cfg.Type, registry.ListCorpusTypes())
	}

	rc := resolved(*cfg, baseDir)
	module, err := constructor(&rc)
	if err != nil {
		return nil, err
	}
	return module, nil
}

// CreateFilterModules creates the shape filter modules in configured order.
func CreateFilterModules(cfgs []sieve.ModuleConfig, baseDir string) ([]filter.Module, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}

	modules := make([]filter.Module, 0, len(cfgs))
	for i, cfg := range cfgs {
		module, err := createSingleFilterModule(cfg, i, baseDir)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, nil
}

func createSingleFilterModule(cfg sieve.ModuleConfig, index int, baseDir string) (filter.Module, error) {
	constructor := registry.GetFilterConstructor(cfg.Type)
	if constructor == nil {
		return nil, unknownType(fmt.Sprintf("filter (index %d)", index), cfg.Type, registry.ListFilterTypes())
	}

	// Script files are checked as written, before resolution makes them absolute.
	if scriptFile, ok := cfg.Config["scriptFile"].(string); ok {
		if err := pathutil.ValidateFilePath(scriptFile); err != nil {
			return nil, errhandling.NewConfigurationError(fmt.Sprintf("invalid script filter at index %d", index), err)
		}
	}

	module, err := constructor(resolved(cfg, baseDir), index)
	if err != nil {
		return nil, err
	}
	return module, nil
}

// LoadOracle performs the one-time initialization of the meaning oracle.
// A nil config or the "none" oracle returns a nil Oracle and no error.
func LoadOracle(ctx context.Context, cfg *sieve.ModuleConfig, baseDir string) (oracle.Oracle, error) {
	if cfg == nil {
		return nil, nil
	}

	constructor := registry.GetOracleConstructor(cfg.Type)
	if constructor == nil {
		return nil, unknownType("oracle", cfg.Type, registry.ListOracleTypes())
	}

	rc := resolved(*cfg, baseDir)
	o, err := constructor(ctx, &rc)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// CreateMeaningModule loads the oracle and wraps it as the meaning stage
// ("workers" sets the query concurrency). It returns nil when the pipeline
// has no meaning stage.
func CreateMeaningModule(ctx context.Context, cfg *sieve.ModuleConfig, baseDir string) (*filter.MeaningModule, error) {
	if cfg == nil {
		return nil, nil
	}

	workers, err := parseWorkers(cfg.Config)
	if err != nil {
		return nil, err
	}

	o, err := LoadOracle(ctx, cfg, baseDir)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, nil
	}

	m, err := filter.NewMeaning(o, workers)
	if err != nil {
		_ = o.Close()
		return nil, err
	}
	return m, nil
}

func parseWorkers(cfg map[string]interface{}) (int, error) {
	raw, ok := cfg["workers"]
	if !ok {
		return 1, nil
	}
	f, isNumber := raw.(float64)
	if !isNumber || f < 1 || f != math.Trunc(f) {
		return 0, errhandling.NewConfigurationError(fmt.Sprintf("meaning 'workers' must be a positive integer, got %v", raw), nil)
	}
	return int(f), nil
}

// CreateOutputModule creates the output module of a pipeline.
func CreateOutputModule(cfg *sieve.ModuleConfig, baseDir string) (output.Module, error) {
	if cfg == nil {
		return nil, errhandling.NewConfigurationError("pipeline has no output", nil)
	}

	constructor := registry.GetOutputConstructor(cfg.Type)
	if constructor == nil {
		return nil, unknownType("output", cfg.Type, registry.ListOutputTypes())
	}

	rc := resolved(*cfg, baseDir)
	module, err := constructor(&rc)
	if err != nil {
		return nil, err
	}
	return module, nil
}
