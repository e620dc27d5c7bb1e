package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS entries (
	path        TEXT PRIMARY KEY,
	modified_ns INTEGER NOT NULL,
	valid       INTEGER NOT NULL
)`

// SQLiteBackend stores the index in a SQLite database file. The whole table
// is read on Read and rewritten in one transaction on Write.
type SQLiteBackend struct {
	path string
}

// NewSQLiteBackend creates a backend for the database file at path.
func NewSQLiteBackend(path string) *SQLiteBackend {
	return &SQLiteBackend{path: path}
}

// Read loads all rows. A missing database file yields an empty map.
func (b *SQLiteBackend) Read() (map[string]Entry, error) {
	if _, err := os.Stat(b.path); errors.Is(err, os.ErrNotExist) {
		return make(map[string]Entry), nil
	}

	db, err := b.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT path, modified_ns, valid FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, b.path, err)
	}
	defer rows.Close()

	entries := make(map[string]Entry)
	for rows.Next() {
		var path string
		var modifiedNs int64
		var valid bool
		if err := rows.Scan(&path, &modifiedNs, &valid); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, b.path, err)
		}
		entries[path] = Entry{LastModified: time.Unix(0, modifiedNs).UTC(), Valid: valid}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, b.path, err)
	}
	return entries, nil
}

// Write replaces every row with entries.
func (b *SQLiteBackend) Write(entries map[string]Entry) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	db, err := b.open()
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO entries (path, modified_ns, valid) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for path, entry := range entries {
		if _, err := stmt.Exec(path, entry.LastModified.UnixNano(), entry.Valid); err != nil {
			return fmt.Errorf("inserting %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", b.path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, b.path, err)
	}
	return db, nil
}
