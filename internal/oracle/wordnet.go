package oracle

import (
	"context"
	"log/slog"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/internal/logger"
	"github.com/wordsieve/runtime/internal/wordnet"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// WordNet answers meaning queries from a WordNet database directory, the
// way a synset lookup does: a word has meaning when any of its morphological
// base forms is indexed with at least one synset.
type WordNet struct {
	db *wordnet.Database
}

// NewWordNet loads the WordNet database in dir.
func NewWordNet(dir string) (*WordNet, error) {
	db, err := wordnet.Open(dir)
	if err != nil {
		return nil, errhandling.NewResourceError(dir, "wordnet database cannot be loaded", err)
	}
	logger.Debug("wordnet oracle loaded",
		slog.String("dir", dir),
		slog.Int("lemmas", db.Len()),
	)
	return &WordNet{db: db}, nil
}

// NewWordNetFromConfig creates a WordNet oracle from module configuration ("dir").
func NewWordNetFromConfig(_ context.Context, cfg *sieve.ModuleConfig) (Oracle, error) {
	dir, err := stringConfig(cfg, "dir")
	if err != nil {
		return nil, err
	}
	o, err := NewWordNet(dir)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// HasMeaning implements Oracle.
func (w *WordNet) HasMeaning(ctx context.Context, word string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return w.db.HasSynsets(word), nil
}

// Close implements Oracle.
func (w *WordNet) Close() error {
	return nil
}
