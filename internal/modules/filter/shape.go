package filter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/internal/logger"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// Shape module types
const (
	TypePalindrome  = "palindrome"
	TypeConsecutive = "consecutive"
	TypeSameEnds    = "sameEnds"
	TypeContainsAll = "containsAll"
	TypeExcludes    = "excludes"
	TypeAlphabetic  = "alphabetic"
	TypeLength      = "length"
)

// Consecutive directions
const (
	DirectionAscending  = "ascending"
	DirectionDescending = "descending"
	DirectionEither     = "either"
)

// defaultExcludedChars rejects multi-word WordNet lemmas such as "ice_cream".
const defaultExcludedChars = "_"

// IsPalindrome reports whether word reads the same forward and backward.
func IsPalindrome(word string) bool {
	runes := []rune(word)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		if runes[i] != runes[j] {
			return false
		}
	}
	return true
}

// IsConsecutive returns a predicate that accepts words whose adjacent
// letters are successive code points in the given direction ("abc", "rst").
// DirectionEither accepts a word that is consistently ascending or
// consistently descending, never a mix.
func IsConsecutive(direction string) (Predicate, error) {
	switch direction {
	case "", DirectionAscending:
		return stepPredicate(1), nil
	case DirectionDescending:
		return stepPredicate(-1), nil
	case DirectionEither:
		up, down := stepPredicate(1), stepPredicate(-1)
		return func(word string) bool { return up(word) || down(word) }, nil
	default:
		return nil, fmt.Errorf("direction must be %q, %q or %q, got %q",
			DirectionAscending, DirectionDescending, DirectionEither, direction)
	}
}

func stepPredicate(step rune) Predicate {
	return func(word string) bool {
		runes := []rune(word)
		for i := 1; i < len(runes); i++ {
			if runes[i]-runes[i-1] != step {
				return false
			}
		}
		return true
	}
}

// HasSameEnds reports whether the first and last letters of word are equal.
func HasSameEnds(word string) bool {
	if word == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(word)
	last, _ := utf8.DecodeLastRuneInString(word)
	return first == last
}

// ContainsAll returns a predicate accepting words that contain every letter.
func ContainsAll(letters []rune) Predicate {
	return func(word string) bool {
		for _, r := range letters {
			if !strings.ContainsRune(word, r) {
				return false
			}
		}
		return true
	}
}

// Excludes returns a predicate rejecting words that contain any of chars.
func Excludes(chars string) Predicate {
	return func(word string) bool {
		return !strings.ContainsAny(word, chars)
	}
}

// IsAlphabetic reports whether every rune of word is a letter.
func IsAlphabetic(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// LengthBetween returns a predicate bounding the rune length of a word.
// A max of zero means unbounded.
func LengthBetween(minLen, maxLen int) Predicate {
	return func(word string) bool {
		n := utf8.RuneCountInString(word)
		return n >= minLen && (maxLen == 0 || n <= maxLen)
	}
}

// ShapeModule applies a single predicate with a minimum length guard.
// Words shorter than the guard are rejected without evaluating the predicate.
type ShapeModule struct {
	moduleType string
	minLength  int
	predicate  Predicate
}

// NewShapeModule wraps a predicate as a filter module.
func NewShapeModule(moduleType string, minLength int, predicate Predicate) *ShapeModule {
	return &ShapeModule{moduleType: moduleType, minLength: minLength, predicate: predicate}
}

// shapeBuilder creates a predicate and its built-in minimum length.
type shapeBuilder func(cfg map[string]interface{}) (Predicate, int, error)

var shapeBuilders = map[string]shapeBuilder{
	TypePalindrome: func(map[string]interface{}) (Predicate, int, error) {
		return IsPalindrome, 2, nil
	},
	TypeConsecutive: func(cfg map[string]interface{}) (Predicate, int, error) {
		direction, _ := cfg["direction"].(string)
		p, err := IsConsecutive(direction)
		return p, 2, err
	},
	TypeSameEnds: func(map[string]interface{}) (Predicate, int, error) {
		return HasSameEnds, 2, nil
	},
	TypeContainsAll: func(cfg map[string]interface{}) (Predicate, int, error) {
		letters, err := letterSet(cfg, "letters")
		if err != nil {
			return nil, 0, err
		}
		if len(letters) == 0 {
			return nil, 0, errors.New("'letters' is required")
		}
		return ContainsAll(letters), 1, nil
	},
	TypeExcludes: func(cfg map[string]interface{}) (Predicate, int, error) {
		chars, err := letterSet(cfg, "chars")
		if err != nil {
			return nil, 0, err
		}
		if len(chars) == 0 {
			return Excludes(defaultExcludedChars), 1, nil
		}
		return Excludes(string(chars)), 1, nil
	},
	TypeAlphabetic: func(map[string]interface{}) (Predicate, int, error) {
		return IsAlphabetic, 1, nil
	},
	TypeLength: buildLength,
}

func buildLength(cfg map[string]interface{}) (Predicate, int, error) {
	minLen, _, err := intConfig(cfg, "min")
	if err != nil {
		return nil, 0, err
	}
	maxLen, hasMax, err := intConfig(cfg, "max")
	if err != nil {
		return nil, 0, err
	}
	exact, hasExact, err := intConfig(cfg, "exact")
	if err != nil {
		return nil, 0, err
	}

	if hasExact {
		if minLen != 0 || hasMax {
			return nil, 0, errors.New("'exact' cannot be combined with 'min' or 'max'")
		}
		minLen, maxLen, hasMax = exact, exact, true
	}
	if hasMax && maxLen == 0 {
		return nil, 0, errors.New("'max' must be at least 1")
	}
	if hasMax && maxLen < minLen {
		return nil, 0, fmt.Errorf("'max' (%d) is less than 'min' (%d)", maxLen, minLen)
	}
	if minLen < 1 {
		minLen = 1
	}
	return LengthBetween(minLen, maxLen), minLen, nil
}

// ShapeTypes returns the names of the built-in shape modules, sorted.
func ShapeTypes() []string {
	types := make([]string, 0, len(shapeBuilders))
	for t := range shapeBuilders {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// NewShapeFromConfig creates a built-in shape module. A configured
// "minLength" can raise the module's guard but never lower it.
func NewShapeFromConfig(cfg sieve.ModuleConfig) (*ShapeModule, error) {
	build, ok := shapeBuilders[cfg.Type]
	if !ok {
		return nil, errhandling.NewConfigurationError(fmt.Sprintf("unknown shape filter type %q", cfg.Type), nil)
	}
	predicate, minLength, err := build(cfg.Config)
	if err != nil {
		return nil, errhandling.NewConfigurationError(fmt.Sprintf("invalid %s filter config", cfg.Type), err)
	}
	configured, ok, err := intConfig(cfg.Config, "minLength")
	if err != nil {
		return nil, errhandling.NewConfigurationError(fmt.Sprintf("invalid %s filter config", cfg.Type), err)
	}
	if ok && configured > minLength {
		minLength = configured
	}

	logger.Debug("shape filter initialized",
		slog.String("module_type", cfg.Type),
		slog.Int("min_length", minLength),
	)
	return NewShapeModule(cfg.Type, minLength, predicate), nil
}

// Accept reports whether word passes the guard and the predicate.
func (m *ShapeModule) Accept(word string) bool {
	if utf8.RuneCountInString(word) < m.minLength {
		return false
	}
	return m.predicate(word)
}

// MinLength returns the module's minimum word length.
func (m *ShapeModule) MinLength() int {
	return m.minLength
}

// Process implements Module.
func (m *ShapeModule) Process(ctx context.Context, words []string) ([]string, error) {
	result := make([]string, 0, len(words))
	for i, word := range words {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if m.Accept(word) {
			result = append(result, word)
		}
	}
	return result, nil
}
