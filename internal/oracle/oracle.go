// Package oracle provides meaning oracles: read-only lookups answering whether
// a word has at least one recorded sense.
//
// An oracle is loaded once, explicitly, before a pipeline runs and is then
// queried with the lowercase form of each shape-qualified candidate. Loading
// failures and query failures are fatal to the run; there is no silent skip.
package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// Oracle answers meaning queries. Implementations must be safe for
// concurrent HasMeaning calls.
type Oracle interface {
	// HasMeaning reports whether word has at least one recorded sense.
	// An error means the oracle could not answer, not that the word is unknown.
	HasMeaning(ctx context.Context, word string) (bool, error)

	// Close releases resources held by the oracle.
	Close() error
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, word string) (bool, error)

// HasMeaning calls f.
func (f Func) HasMeaning(ctx context.Context, word string) (bool, error) {
	return f(ctx, word)
}

// Close is a no-op.
func (f Func) Close() error {
	return nil
}

// stringConfig returns a required, non-empty string value from cfg.
func stringConfig(cfg *sieve.ModuleConfig, key string) (string, error) {
	v, _ := cfg.Config[key].(string)
	if strings.TrimSpace(v) == "" {
		return "", errhandling.NewConfigurationError(
			fmt.Sprintf("%s oracle: required field '%s' is missing or empty", cfg.Type, key), nil)
	}
	return v, nil
}
