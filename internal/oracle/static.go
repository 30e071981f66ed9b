package oracle

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/internal/logger"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// Set answers meaning queries from an in-memory word set. With All set,
// every word has meaning.
type Set struct {
	words map[string]struct{}
	all   bool
}

// NewSet creates a Set oracle. Words are matched case-insensitively, with
// the same Unicode lowercasing applied to corpus words.
func NewSet(words []string, all bool) *Set {
	lower := cases.Lower(language.Und)
	s := &Set{words: make(map[string]struct{}, len(words)), all: all}
	for _, w := range words {
		if w = lower.String(strings.TrimSpace(w)); w != "" {
			s.words[w] = struct{}{}
		}
	}
	return s
}

// NewStaticFromConfig creates a Set oracle from module configuration ("words", "all").
func NewStaticFromConfig(_ context.Context, cfg *sieve.ModuleConfig) (Oracle, error) {
	all, _ := cfg.Config["all"].(bool)

	var words []string
	if raw, ok := cfg.Config["words"]; ok {
		list, isList := raw.([]interface{})
		if !isList {
			return nil, fmt.Errorf("static oracle: 'words' must be a list, got %T", raw)
		}
		for i, item := range list {
			w, isString := item.(string)
			if !isString {
				return nil, fmt.Errorf("static oracle: words[%d] must be a string, got %T", i, item)
			}
			words = append(words, w)
		}
	}

	if !all && len(words) == 0 {
		return nil, fmt.Errorf("static oracle: either 'words' or 'all: true' is required")
	}
	return NewSet(words, all), nil
}

// NewWordListFromConfig creates a Set oracle from a word list file ("path"),
// one word per line; blank lines and lines starting with '#' are ignored.
func NewWordListFromConfig(_ context.Context, cfg *sieve.ModuleConfig) (Oracle, error) {
	path, err := stringConfig(cfg, "path")
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errhandling.NewResourceError(path, "word list cannot be opened", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errhandling.NewResourceError(path, "word list cannot be read", err)
	}
	set := NewSet(words, false)
	logger.Debug("word list oracle loaded",
		slog.String("path", path),
		slog.Int("words", set.Len()),
	)
	return set, nil
}

// HasMeaning implements Oracle.
func (s *Set) HasMeaning(ctx context.Context, word string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s.all {
		return true, nil
	}
	// A Caser keeps state, so each concurrent query gets its own.
	_, ok := s.words[cases.Lower(language.Und).String(word)]
	return ok, nil
}

// Len returns the number of listed words.
func (s *Set) Len() int {
	return len(s.words)
}

// Close implements Oracle.
func (s *Set) Close() error {
	return nil
}
