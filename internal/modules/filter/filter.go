// Package filter provides implementations for filter modules.
// Filter modules narrow the candidate word set: shape predicates first,
// then the meaning stage backed by an oracle.
package filter

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OnError behavior constants
const (
	OnErrorFail = "fail"
	OnErrorSkip = "skip"
)

// ErrInvalidOnError is returned for an unknown onError mode.
var ErrInvalidOnError = errors.New("onError must be 'fail' or 'skip'")

// Module represents a filter module that narrows candidate words.
type Module interface {
	// Process returns the words that pass the filter, preserving input order.
	Process(ctx context.Context, words []string) ([]string, error)
}

// Predicate decides whether a single normalized word has a shape property.
type Predicate func(word string) bool

func parseOnError(cfg map[string]interface{}) (string, error) {
	raw, ok := cfg["onError"]
	if !ok {
		return OnErrorFail, nil
	}
	mode, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w, got %T", ErrInvalidOnError, raw)
	}
	switch mode {
	case "":
		return OnErrorFail, nil
	case OnErrorFail, OnErrorSkip:
		return mode, nil
	default:
		return "", fmt.Errorf("%w, got %q", ErrInvalidOnError, mode)
	}
}

// intConfig reads a non-negative integer option. Numbers decoded from
// configuration files arrive as float64.
func intConfig(cfg map[string]interface{}, key string) (int, bool, error) {
	raw, ok := cfg[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, false, fmt.Errorf("'%s' must be a number, got %T", key, raw)
	}
	if f < 0 || f != math.Trunc(f) {
		return 0, false, fmt.Errorf("'%s' must be a non-negative integer, got %v", key, f)
	}
	return int(f), true, nil
}

// letterSet reads a string or a list of strings as a list of runes,
// lowercased the same way corpus words are.
func letterSet(cfg map[string]interface{}, key string) ([]rune, error) {
	raw, ok := cfg[key]
	if !ok {
		return nil, nil
	}
	lower := cases.Lower(language.Und)
	switch v := raw.(type) {
	case string:
		return []rune(lower.String(v)), nil
	case []interface{}:
		var out []rune
		for i, item := range v {
			s, isString := item.(string)
			if !isString {
				return nil, fmt.Errorf("%s[%d] must be a string, got %T", key, i, item)
			}
			out = append(out, []rune(lower.String(s))...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("'%s' must be a string or a list, got %T", key, raw)
	}
}
