// Package database opens SQLite lexicon databases used as corpus and meaning
// sources, and classifies their errors.
package database

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DriverSQLite is the database/sql driver name registered by modernc.org/sqlite.
const DriverSQLite = "sqlite"

// OpenReadOnly opens the SQLite database at path without write access and
// verifies the connection. A missing file is reported as such instead of
// letting SQLite create an empty database.
func OpenReadOnly(ctx context.Context, path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	dsn, err := readOnlyDSN(path)
	if err != nil {
		return nil, ClassifyDatabaseError(err, path, "open", "")
	}
	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, ClassifyDatabaseError(err, path, "open", "")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, ClassifyDatabaseError(err, path, "open", "")
	}
	return db, nil
}

// readOnlyDSN builds a file: URI for path. The path is made absolute and
// escaped, so '?', '#' and '%' in file names are not read as URI syntax.
func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{
		Scheme:   "file",
		Path:     slashed,
		RawQuery: "mode=ro&_pragma=busy_timeout(5000)",
	}
	return u.String(), nil
}

// QueryStrings runs query and returns the first column of every row as a string.
// NULL values are skipped.
func QueryStrings(ctx context.Context, db *sql.DB, path, query string) ([]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, ClassifyDatabaseError(err, path, "query", query)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var value sql.NullString
		if err := rows.Scan(&value); err != nil {
			return nil, ClassifyDatabaseError(err, path, "scan", query)
		}
		if value.Valid {
			out = append(out, value.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, ClassifyDatabaseError(err, path, "query", query)
	}
	return out, nil
}

// Exists reports whether query returns at least one row for args.
func Exists(ctx context.Context, db *sql.DB, path, query string, args ...any) (bool, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return false, ClassifyDatabaseError(err, path, "query", query)
	}
	defer rows.Close()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, ClassifyDatabaseError(err, path, "query", query)
	}
	return found, nil
}
