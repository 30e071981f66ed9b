package corpus

import (
	"context"
	"errors"

	"github.com/wordsieve/runtime/pkg/sieve"
)

// Static is a corpus given inline in the configuration ("words").
type Static struct {
	words []string
}

// NewStatic creates a static corpus over words.
func NewStatic(words []string) *Static {
	return &Static{words: append([]string(nil), words...)}
}

// NewStaticFromConfig creates a static corpus from module configuration.
func NewStaticFromConfig(cfg *sieve.ModuleConfig) (*Static, error) {
	if err := nilCheck(cfg); err != nil {
		return nil, err
	}
	words, err := stringList(cfg.Config, "words")
	if err != nil {
		return nil, configError(cfg.Type, err)
	}
	if words == nil {
		return nil, configError(cfg.Type, errors.New("'words' is required"))
	}
	return NewStatic(words), nil
}

// Load implements Module.
func (s *Static) Load(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), s.words...), nil
}

// Close implements Module.
func (s *Static) Close() error {
	return nil
}
