package oracle

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/wordsieve/runtime/internal/database"
	"github.com/wordsieve/runtime/internal/errhandling"
	"github.com/wordsieve/runtime/pkg/sieve"
)

// DefaultSenseQuery is the lookup used when no query is configured.
const DefaultSenseQuery = "SELECT 1 FROM senses WHERE word = ? LIMIT 1"

// SQLite answers meaning queries with a parameterized lookup against a
// read-only SQLite lexicon. The word is bound as the single parameter.
type SQLite struct {
	db    *sql.DB
	path  string
	query string
}

// NewSQLite opens the lexicon at path and checks the query against its schema.
func NewSQLite(ctx context.Context, path, query string) (*SQLite, error) {
	if query == "" {
		query = DefaultSenseQuery
	}
	if strings.Count(query, "?") != 1 {
		return nil, errhandling.NewConfigurationError("sqlite oracle query must contain exactly one '?' placeholder", nil)
	}

	db, err := database.OpenReadOnly(ctx, path)
	if err != nil {
		var dbErr *database.DatabaseError
		if errors.As(err, &dbErr) {
			return nil, database.Classified(err)
		}
		return nil, errhandling.NewResourceError(path, "lexicon database cannot be opened", err)
	}

	o := &SQLite{db: db, path: path, query: query}

	// A probe query surfaces a missing table at load time instead of on the first word.
	if _, err := o.HasMeaning(ctx, ""); err != nil {
		_ = db.Close()
		return nil, err
	}
	return o, nil
}

// NewSQLiteFromConfig creates a SQLite oracle from module configuration ("path", "query").
func NewSQLiteFromConfig(ctx context.Context, cfg *sieve.ModuleConfig) (Oracle, error) {
	path, err := stringConfig(cfg, "path")
	if err != nil {
		return nil, err
	}
	query, _ := cfg.Config["query"].(string)
	o, err := NewSQLite(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// HasMeaning implements Oracle.
func (s *SQLite) HasMeaning(ctx context.Context, word string) (bool, error) {
	found, err := database.Exists(ctx, s.db, s.path, s.query, word)
	if err != nil {
		return false, database.Classified(err)
	}
	return found, nil
}

// Close implements Oracle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
