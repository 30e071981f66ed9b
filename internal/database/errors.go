package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wordsieve/runtime/internal/errhandling"
)

// Error categories for lexicon database operations
const (
	CategoryConnection = "connection"
	CategoryQuery      = "query"
	CategorySchema     = "schema"
	CategoryTimeout    = "timeout"
	CategoryUnknown    = "unknown"
)

// DatabaseError represents a categorized database error with context.
//
//nolint:revive // DatabaseError is a clear, descriptive name that doesn't stutter in practice
type DatabaseError struct {
	Category    string // connection, query, schema, timeout
	Operation   string // open, query, scan
	Path        string // database file
	Message     string
	Query       string // truncated query text, never parameter values
	OriginalErr error
}

func (e *DatabaseError) Error() string {
	msg := fmt.Sprintf("database %s error: %s", e.Category, e.Message)
	if e.Operation != "" {
		msg = fmt.Sprintf("database %s error in %s: %s", e.Category, e.Operation, e.Message)
	}
	if e.OriginalErr != nil {
		msg += fmt.Sprintf(" (original: %v)", e.OriginalErr)
	}
	return msg
}

func (e *DatabaseError) Unwrap() error {
	return e.OriginalErr
}

// ClassifyDatabaseError classifies a raw sqlite error for the given operation.
func ClassifyDatabaseError(err error, path, operation, query string) *DatabaseError {
	if err == nil {
		return nil
	}

	dbErr := &DatabaseError{
		Category:    CategoryQuery,
		Operation:   operation,
		Path:        path,
		Message:     err.Error(),
		Query:       sanitizeQuery(query),
		OriginalErr: err,
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "timeout", "timed out", "deadline exceeded", "database is locked", "busy"):
		dbErr.Category = CategoryTimeout
		dbErr.Message = "operation timed out or database busy"
	case containsAny(msg, "unable to open", "cannot open", "file is not a database", "not a database", "disk i/o error", "out of memory", "too many open files"):
		dbErr.Category = CategoryConnection
		dbErr.Message = "database cannot be opened"
	case containsAny(msg, "no such table", "no such column"):
		dbErr.Category = CategorySchema
		dbErr.Message = "query does not match the database schema"
	case containsAny(msg, "syntax error", "near \"", "incomplete input"):
		dbErr.Message = "SQL syntax error"
	}
	return dbErr
}

// Classified converts a database error into the runtime's error taxonomy.
// Schema, connection and syntax problems make the lexicon unusable, so
// every category maps to an unavailable resource except cancellation.
func Classified(err error) error {
	if err == nil {
		return nil
	}
	if errhandling.IsCanceled(err) {
		return errhandling.NewCanceledError(err)
	}

	var dbErr *DatabaseError
	if errors.As(err, &dbErr) {
		return errhandling.NewResourceError(dbErr.Path, dbErr.Error(), err)
	}
	return errhandling.ClassifyError(err)
}

// sanitizeQuery truncates very long queries for logging.
func sanitizeQuery(query string) string {
	if len(query) > 500 {
		return query[:500] + "... (truncated)"
	}
	return query
}

func containsAny(s string, indicators ...string) bool {
	for _, indicator := range indicators {
		if strings.Contains(s, indicator) {
			return true
		}
	}
	return false
}

// IsDatabaseError checks if the error is a DatabaseError.
func IsDatabaseError(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr)
}
