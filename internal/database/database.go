package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Gateway executes one parametrized statement per call against the SQLite
// store. database/sql checks a pooled connection out per statement; the pool
// is capped at one open connection to keep the original single-session,
// one-statement-one-connection discipline.
type Gateway struct {
	db *sqlx.DB
}

// Open opens (or creates) the SQLite database at dbPath and creates the
// authors, books and loans tables if they are absent.
func Open(dbPath string) (*Gateway, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=0&_loc=auto", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	gw := &Gateway{db: db}
	if err := gw.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("Database initialized at %s", dbPath)
	return gw, nil
}

func (g *Gateway) initSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := g.db.Exec(stmt); err != nil {
			return &BackendError{Op: "init schema", Err: err}
		}
	}
	return nil
}

// Close closes the underlying database handle.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// Exec runs one mutating statement and returns the number of affected rows.
// Callers must treat zero affected rows as "the operation did not happen".
func (g *Gateway) Exec(statement string, args ...any) (int64, error) {
	res, err := g.db.Exec(statement, args...)
	if err != nil {
		return 0, &BackendError{Op: "exec", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &BackendError{Op: "exec", Err: err}
	}
	return n, nil
}

// Insert runs one INSERT statement and returns the generated row id.
func (g *Gateway) Insert(statement string, args ...any) (int64, error) {
	res, err := g.db.Exec(statement, args...)
	if err != nil {
		return 0, &BackendError{Op: "insert", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &BackendError{Op: "insert", Err: err}
	}
	return id, nil
}

// Select runs one query and scans all rows into dest (a pointer to a slice).
func (g *Gateway) Select(dest any, statement string, args ...any) error {
	if err := g.db.Select(dest, statement, args...); err != nil {
		return &BackendError{Op: "select", Err: err}
	}
	return nil
}

// Get runs one query expected to return a single row and scans it into
// dest. A missing row surfaces as ErrNotFound.
func (g *Gateway) Get(dest any, statement string, args ...any) error {
	err := g.db.Get(dest, statement, args...)
	if err == nil {
		return nil
	}
	if isNoRows(err) {
		return ErrNotFound
	}
	return &BackendError{Op: "get", Err: err}
}

// Stats reports the row count of each circulation table. Used by the
// stats command to verify the store has data.
func (g *Gateway) Stats() (map[string]int, error) {
	stats := make(map[string]int, 3)
	for _, table := range []string{"authors", "books", "loans"} {
		n, err := g.Count("SELECT COUNT(*) FROM " + table)
		if err != nil {
			return nil, err
		}
		stats[table] = n
	}
	return stats, nil
}

// Count runs one COUNT(*) style query and returns the scalar result.
func (g *Gateway) Count(statement string, args ...any) (int, error) {
	var n int
	if err := g.db.Get(&n, statement, args...); err != nil {
		return 0, &BackendError{Op: "count", Err: err}
	}
	return n, nil
}
