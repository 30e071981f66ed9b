package corpus

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/wordsieve/runtime/pkg/sieve"
)

const (
	defaultAlphabet = "abcdefghijklmnopqrstuvwxyz"

	// maxCombinations bounds the generated corpus size.
	maxCombinations = 5_000_000
)

// Combinations generates every k-letter combination of an alphabet, each
// combination keeping the alphabet's order ("abc" for length 2 yields
// "ab", "ac", "bc"). Letters listed in "exclude" are removed first.
type Combinations struct {
	alphabet []rune
	length   int
}

// NewCombinations creates a combinations corpus. Duplicate letters in the
// alphabet are dropped, keeping the first occurrence.
func NewCombinations(alphabet, exclude string, length int) (*Combinations, error) {
	if alphabet == "" {
		alphabet = defaultAlphabet
	}
	if length < 1 {
		return nil, fmt.Errorf("'length' must be at least 1, got %d", length)
	}

	seen := make(map[rune]struct{})
	for _, r := range exclude {
		seen[r] = struct{}{}
	}
	var letters []rune
	for _, r := range alphabet {
		if _, skip := seen[r]; skip {
			continue
		}
		seen[r] = struct{}{}
		letters = append(letters, r)
	}

	if count := binomial(len(letters), length); count > maxCombinations {
		return nil, fmt.Errorf("%d letters choose %d gives %.0f combinations, limit is %d",
			len(letters), length, count, maxCombinations)
	}
	return &Combinations{alphabet: letters, length: length}, nil
}

// NewCombinationsFromConfig creates a combinations corpus ("alphabet", "exclude", "length").
func NewCombinationsFromConfig(cfg *sieve.ModuleConfig) (*Combinations, error) {
	if err := nilCheck(cfg); err != nil {
		return nil, err
	}
	alphabet, _ := cfg.Config["alphabet"].(string)
	exclude, _ := cfg.Config["exclude"].(string)

	rawLength, ok := cfg.Config["length"].(float64)
	if !ok {
		return nil, configError(cfg.Type, errors.New("'length' is required and must be a number"))
	}
	if rawLength != math.Trunc(rawLength) {
		return nil, configError(cfg.Type, fmt.Errorf("'length' must be an integer, got %v", rawLength))
	}

	c, err := NewCombinations(alphabet, exclude, int(rawLength))
	if err != nil {
		return nil, configError(cfg.Type, err)
	}
	return c, nil
}

// Load implements Module.
func (c *Combinations) Load(ctx context.Context) ([]string, error) {
	n, k := len(c.alphabet), c.length
	if k > n {
		return []string{}, nil
	}

	words := make([]string, 0, int(binomial(n, k)))
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	var b strings.Builder
	for {
		if len(words)%65536 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		b.Reset()
		for _, i := range idx {
			b.WriteRune(c.alphabet[i])
		}
		words = append(words, b.String())

		// Advance to the next combination in lexicographic index order.
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return words, nil
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// Close implements Module.
func (c *Combinations) Close() error {
	return nil
}

func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	result := 1.0
	for i := 1; i <= k; i++ {
		result = result * float64(n-k+i) / float64(i)
	}
	return math.Round(result)
}
