package corpus

import (
	"context"
	"errors"

	"github.com/wordsieve/runtime/internal/database"
	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/internal/logger"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// DefaultWordQuery selects the corpus when no query is configured.
const DefaultWordQuery = "SELECT word FROM words"

// SQLite loads words from the first column of a query against a read-only
// SQLite database. NULL values are skipped.
type SQLite struct {
	path  string
	query string
}

// NewSQLiteFromConfig creates a SQLite corpus ("path", "query").
func NewSQLiteFromConfig(cfg *sieve.ModuleConfig) (*SQLite, error) {
	if err := nilCheck(cfg); err != nil {
		return nil, err
	}
	path, _ := cfg.Config["path"].(string)
	if path == "" {
		return nil, configError(cfg.Type, errors.New("'path' is required"))
	}
	query, _ := cfg.Config["query"].(string)
	if query == "" {
		query = DefaultWordQuery
	}
	return &SQLite{path: path, query: query}, nil
}

// Load implements Module.
func (s *SQLite) Load(ctx context.Context) ([]string, error) {
	db, err := database.OpenReadOnly(ctx, s.path)
	if err != nil {
		var dbErr *database.DatabaseError
		if errors.As(err, &dbErr) {
			return nil, database.Classified(err)
		}
		return nil, errhandling.NewResourceError(s.path, "corpus database cannot be opened", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warn("failed to close corpus database", "path", s.path, "error", closeErr.Error())
		}
	}()

	words, err := database.QueryStrings(ctx, db, s.path, s.query)
	if err != nil {
		return nil, database.Classified(err)
	}
	return words, nil
}

// Close implements Module.
func (s *SQLite) Close() error {
	return nil
}
