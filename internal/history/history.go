// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/history/history.go
// Summary: SQLite launch history feeding the picker's frecency ranking.
//
// One row per launched item key: how often it was launched and when last.
// The launcher loads the whole table at startup and records one launch
// right before it exits, so every call is synchronous.

package history

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/framegrace/texelayer/picker"

	_ "modernc.org/sqlite"
)

// FileName is the database name inside the state directory.
const FileName = "history.db"

const historySchemaVersion = 1

const historySchema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS launches (
    key   TEXT PRIMARY KEY,       -- desktop id or other stable item key
    count INTEGER NOT NULL DEFAULT 0,
    last  INTEGER NOT NULL        -- unix seconds
);
`

// DB is the launch history store.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(2000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := checkSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db, path: path}, nil
}

func checkSchema(db *sql.DB) error {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version == historySchemaVersion {
		return nil
	}
	if version > historySchemaVersion {
		return fmt.Errorf("history schema version %d is newer than %d", version, historySchemaVersion)
	}
	log.Printf("History: Initialising schema version %d", historySchemaVersion)
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", historySchemaVersion)
	return err
}

func (h *DB) Path() string { return h.path }

// Load returns every entry.
func (h *DB) Load() (picker.History, error) {
	rows, err := h.db.Query("SELECT key, count, last FROM launches")
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	out := make(picker.History)
	for rows.Next() {
		var key string
		var count int
		var last int64
		if err := rows.Scan(&key, &count, &last); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out[key] = picker.Entry{Count: count, Last: time.Unix(last, 0)}
	}
	return out, rows.Err()
}

// Record counts one launch of key at the given time and returns the
// updated entry.
func (h *DB) Record(key string, at time.Time) (picker.Entry, error) {
	if key == "" {
		return picker.Entry{}, fmt.Errorf("history: empty key")
	}
	_, err := h.db.Exec(`
INSERT INTO launches (key, count, last) VALUES (?, 1, ?)
ON CONFLICT(key) DO UPDATE SET count = count + 1, last = excluded.last`,
		key, at.Unix())
	if err != nil {
		return picker.Entry{}, fmt.Errorf("record %s: %w", key, err)
	}
	var e picker.Entry
	var last int64
	if err := h.db.QueryRow("SELECT count, last FROM launches WHERE key = ?", key).Scan(&e.Count, &last); err != nil {
		return picker.Entry{}, err
	}
	e.Last = time.Unix(last, 0)
	return e, nil
}

// Prune drops entries whose key is not in known, e.g. uninstalled
// applications. It returns the number of rows removed.
func (h *DB) Prune(known map[string]bool) (int, error) {
	all, err := h.Load()
	if err != nil {
		return 0, err
	}
	tx, err := h.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	n := 0
	for key := range all {
		if known[key] {
			continue
		}
		if _, err := tx.Exec("DELETE FROM launches WHERE key = ?", key); err != nil {
			return 0, err
		}
		n++
	}
	return n, tx.Commit()
}

// Import merges entries, keeping the larger count and the later time per
// key.
func (h *DB) Import(entries picker.History) error {
	tx, err := h.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for key, e := range entries {
		_, err := tx.Exec(`
INSERT INTO launches (key, count, last) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET count = max(count, excluded.count), last = max(last, excluded.last)`,
			key, e.Count, e.Last.Unix())
		if err != nil {
			return fmt.Errorf("import %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (h *DB) Close() error {
	return h.db.Close()
}
