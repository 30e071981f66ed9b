package registry

import (
	"context"
	"fmt"

	"github.com/wordsieve/runtime/internal/modules/corpus"
	"github.com/wordsieve/runtime/internal/modules/filter"
	"github.com/wordsieve/runtime/internal/modules/output"
	"github.com/wordsieve/runtime/internal/oracle"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// OracleNone disables the meaning stage.
const OracleNone = "none"

func init() {
	registerBuiltins()
}

func registerBuiltins() {
	registerBuiltinCorpusModules()
	registerBuiltinFilterModules()
	registerBuiltinOracles()
	registerBuiltinOutputModules()
}

// registerBuiltinCorpusModules registers all built-in corpus module types.
func registerBuiltinCorpusModules() {
	RegisterCorpus("wordlist", func(cfg *sieve.ModuleConfig) (corpus.Module, error) {
		return corpus.NewWordListFromConfig(cfg)
	})
	RegisterCorpus("wordnet", func(cfg *sieve.ModuleConfig) (corpus.Module, error) {
		return corpus.NewWordNetFromConfig(cfg)
	})
	RegisterCorpus("sqlite", func(cfg *sieve.ModuleConfig) (corpus.Module, error) {
		return corpus.NewSQLiteFromConfig(cfg)
	})
	RegisterCorpus("static", func(cfg *sieve.ModuleConfig) (corpus.Module, error) {
		return corpus.NewStaticFromConfig(cfg)
	})
	RegisterCorpus("combinations", func(cfg *sieve.ModuleConfig) (corpus.Module, error) {
		return corpus.NewCombinationsFromConfig(cfg)
	})
}

// registerBuiltinFilterModules registers the shape predicates plus the
// expression and script modules.
func registerBuiltinFilterModules() {
	for _, shapeType := range filter.ShapeTypes() {
		RegisterFilter(shapeType, func(cfg sieve.ModuleConfig, index int) (filter.Module, error) {
			module, err := filter.NewShapeFromConfig(cfg)
			if err != nil {
				return nil, fmt.Errorf("invalid %s filter at index %d: %w", cfg.Type, index, err)
			}
			return module, nil
		})
	}

	RegisterFilter(filter.TypeExpression, func(cfg sieve.ModuleConfig, index int) (filter.Module, error) {
		module, err := filter.NewExpressionFromConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("invalid expression filter at index %d: %w", index, err)
		}
		return module, nil
	})

	RegisterFilter(filter.TypeScript, func(cfg sieve.ModuleConfig, index int) (filter.Module, error) {
		module, err := filter.NewScriptFromModuleConfig(cfg, index)
		if err != nil {
			return nil, fmt.Errorf("invalid script filter at index %d: %w", index, err)
		}
		return module, nil
	})
}

// registerBuiltinOracles registers the meaning oracle backends. The "none"
// oracle yields no oracle, which disables the meaning stage.
func registerBuiltinOracles() {
	RegisterOracle("wordnet", oracle.NewWordNetFromConfig)
	RegisterOracle("sqlite", oracle.NewSQLiteFromConfig)
	RegisterOracle("wordlist", oracle.NewWordListFromConfig)
	RegisterOracle("static", oracle.NewStaticFromConfig)
	RegisterOracle(OracleNone, func(context.Context, *sieve.ModuleConfig) (oracle.Oracle, error) {
		return nil, nil
	})
}

// registerBuiltinOutputModules registers all built-in output module types.
func registerBuiltinOutputModules() {
	RegisterOutput(output.TypeFile, func(cfg *sieve.ModuleConfig) (output.Module, error) {
		return output.NewFileFromConfig(cfg)
	})
	RegisterOutput(output.TypeStdout, func(cfg *sieve.ModuleConfig) (output.Module, error) {
		return output.NewStdoutFromConfig(cfg)
	})
}
