// Package corpus provides implementations for corpus modules.
// Corpus modules load the candidate words a pipeline filters, in one blocking
// call returning the full collection.
package corpus

import (
	"context"
	"errors"
	"fmt"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// ErrNilConfig is returned when a constructor receives no configuration.
var ErrNilConfig = errors.New("corpus configuration is nil")

// Module represents a corpus module that loads candidate words.
type Module interface {
	// Load returns every candidate string of the corpus. Entries are raw:
	// normalization and deduplication are the runtime's job.
	// A corpus that cannot be read is a fatal error.
	Load(ctx context.Context) ([]string, error)
	// Close releases any resources held by the module.
	Close() error
}

// stringList reads a list of strings from a config value.
func stringList(cfg map[string]interface{}, key string) ([]string, error) {
	raw, ok := cfg[key]
	if !ok {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("'%s' must be a list, got %T", key, raw)
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, isString := item.(string)
		if !isString {
			return nil, fmt.Errorf("%s[%d] must be a string, got %T", key, i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func configError(moduleType string, err error) error {
	return errhandling.NewConfigurationError(fmt.Sprintf("invalid %s corpus config", moduleType), err)
}

func nilCheck(cfg *sieve.ModuleConfig) error {
	if cfg == nil {
		return ErrNilConfig
	}
	return nil
}
