package corpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/internal/logger"
	"github.com/wordsieve/runtime/pkg/sieve"
)

const defaultCommentPrefix = "#"

// WordList loads words from plain text files, one word per line.
// Paths may be glob patterns ("**" matches any number of directories);
// every pattern must match at least one file.
type WordList struct {
	patterns []string
	comment  string
}

// NewWordListFromConfig creates a word list corpus ("path" or "paths", "comment").
func NewWordListFromConfig(cfg *sieve.ModuleConfig) (*WordList, error) {
	if err := nilCheck(cfg); err != nil {
		return nil, err
	}

	patterns, err := stringList(cfg.Config, "paths")
	if err != nil {
		return nil, configError(cfg.Type, err)
	}
	if path, ok := cfg.Config["path"].(string); ok && path != "" {
		patterns = append([]string{path}, patterns...)
	}
	if len(patterns) == 0 {
		return nil, configError(cfg.Type, errors.New("'path' or 'paths' is required"))
	}
	for _, p := range patterns {
		if !doublestar.ValidatePathPattern(p) {
			return nil, configError(cfg.Type, fmt.Errorf("invalid path pattern %q", p))
		}
	}

	comment := defaultCommentPrefix
	if c, ok := cfg.Config["comment"].(string); ok {
		comment = c
	}

	return &WordList{patterns: patterns, comment: comment}, nil
}

// Load implements Module.
func (w *WordList) Load(ctx context.Context) ([]string, error) {
	files, err := w.resolve()
	if err != nil {
		return nil, err
	}

	var words []string
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileWords, err := w.readFile(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("word list loaded", "path", path, "entries", len(fileWords))
		words = append(words, fileWords...)
	}
	return words, nil
}

// resolve expands every pattern into a sorted, duplicate-free file list.
func (w *WordList) resolve() ([]string, error) {
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range w.patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errhandling.NewResourceError(pattern, "word list pattern cannot be expanded", err)
		}
		if len(matches) == 0 {
			return nil, errhandling.NewResourceError(pattern, "no word list matches", os.ErrNotExist)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if _, dup := seen[m]; !dup {
				seen[m] = struct{}{}
				files = append(files, m)
			}
		}
	}
	return files, nil
}

func (w *WordList) readFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errhandling.NewResourceError(path, "word list cannot be opened", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || (w.comment != "" && strings.HasPrefix(line, w.comment)) {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errhandling.NewResourceError(path, "word list cannot be read", err)
	}
	return words, nil
}

// Close implements Module.
func (w *WordList) Close() error {
	return nil
}
