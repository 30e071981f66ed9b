package filter

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/internal/logger"
	"github.com/wordsieve/runtime/internal/oracle"
)

// MaxMeaningWorkers bounds the number of concurrent oracle queries.
const MaxMeaningWorkers = 64

// MeaningModule keeps the words for which the oracle reports at least one
// sense. It runs after every shape filter so that the oracle only sees
// words that already have the required shape.
type MeaningModule struct {
	oracle  oracle.Oracle
	workers int
	queries atomic.Int64
}

// NewMeaning creates the meaning stage. workers <= 1 queries sequentially.
func NewMeaning(o oracle.Oracle, workers int) (*MeaningModule, error) {
	if o == nil {
		return nil, errhandling.NewConfigurationError("meaning stage requires an oracle", nil)
	}
	if workers < 1 {
		workers = 1
	}
	if workers > MaxMeaningWorkers {
		return nil, errhandling.NewConfigurationError(
			fmt.Sprintf("meaning workers must be at most %d, got %d", MaxMeaningWorkers, workers), nil)
	}
	return &MeaningModule{oracle: o, workers: workers}, nil
}

// Close releases the oracle.
func (m *MeaningModule) Close() error {
	return m.oracle.Close()
}

// Queries returns the number of oracle queries issued by the last Process call.
func (m *MeaningModule) Queries() int {
	return int(m.queries.Load())
}

// Process implements Module. Any oracle error aborts the stage.
func (m *MeaningModule) Process(ctx context.Context, words []string) ([]string, error) {
	m.queries.Store(0)
	if len(words) == 0 {
		return []string{}, nil
	}

	keep := make([]bool, len(words))
	var err error
	if m.workers == 1 {
		err = m.sequential(ctx, words, keep)
	} else {
		err = m.parallel(ctx, words, keep)
	}
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(words))
	for i, word := range words {
		if keep[i] {
			result = append(result, word)
		}
	}

	logger.Debug("meaning stage completed",
		slog.Int("queried", len(words)),
		slog.Int("with_meaning", len(result)),
		slog.Int("workers", m.workers),
	)
	return result, nil
}

func (m *MeaningModule) sequential(ctx context.Context, words []string, keep []bool) error {
	for i, word := range words {
		ok, err := m.query(ctx, word)
		if err != nil {
			return err
		}
		keep[i] = ok
	}
	return nil
}

// parallel fans queries out over a bounded worker group. Each goroutine
// writes only its own keep slot.
func (m *MeaningModule) parallel(ctx context.Context, words []string, keep []bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, word := range words {
		if gctx.Err() != nil {
			break
		}
		i, word := i, word
		g.Go(func() error {
			ok, err := m.query(gctx, word)
			if err != nil {
				return err
			}
			keep[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (m *MeaningModule) query(ctx context.Context, word string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errhandling.NewCanceledError(err)
	}
	m.queries.Add(1)
	ok, err := m.oracle.HasMeaning(ctx, word)
	if err != nil {
		if errhandling.IsCanceled(err) {
			return false, errhandling.NewCanceledError(err)
		}
		if errhandling.GetErrorCategory(err) != errhandling.CategoryUnknown {
			return false, err
		}
		return false, errhandling.NewResourceError("oracle", fmt.Sprintf("meaning query failed for %q", word), err)
	}
	return ok, nil
}
