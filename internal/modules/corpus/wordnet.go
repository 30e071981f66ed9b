package corpus

import (
	"context"
	"errors"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/internal/wordnet"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// WordNet uses every lemma name of a WordNet database as the corpus.
// Multi-word lemmas keep their underscores ("ice_cream").
type WordNet struct {
	dir string
}

// NewWordNetFromConfig creates a WordNet lemma corpus ("dir").
func NewWordNetFromConfig(cfg *sieve.ModuleConfig) (*WordNet, error) {
	if err := nilCheck(cfg); err != nil {
		return nil, err
	}
	dir, _ := cfg.Config["dir"].(string)
	if dir == "" {
		return nil, configError(cfg.Type, errors.New("'dir' is required"))
	}
	return &WordNet{dir: dir}, nil
}

// Load implements Module.
func (w *WordNet) Load(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db, err := wordnet.Open(w.dir)
	if err != nil {
		return nil, errhandling.NewResourceError(w.dir, "wordnet database cannot be loaded", err)
	}
	return db.Lemmas(), nil
}

// Close implements Module.
func (w *WordNet) Close() error {
	return nil
}
