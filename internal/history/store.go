// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a log of install runs in a SQLite database.
//
// The history is best-effort bookkeeping for the status command; it has no
// bearing on install semantics and store failures never fail an install.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/webmodel/pkg/types"
)

// DBFile is the database file name inside the staging directory.
const DBFile = "history.db"

// Store manages the install-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating the schema
// and parent directories if they do not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS installs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			archive_url TEXT NOT NULL,
			outcome     TEXT NOT NULL,
			failed_step TEXT NOT NULL DEFAULT '',
			detail      TEXT NOT NULL DEFAULT ''
		)`)
	return err
}

// Append inserts one install record.
func (s *Store) Append(rec types.InstallRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO installs (started_at, finished_at, archive_url, outcome, failed_step, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.UTC().Format(time.RFC3339),
		rec.FinishedAt.UTC().Format(time.RFC3339),
		rec.ArchiveURL,
		string(rec.Outcome),
		string(rec.FailedStep),
		rec.Detail,
	)
	if err != nil {
		return fmt.Errorf("inserting install record: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest first.
func (s *Store) Recent(n int) ([]types.InstallRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, archive_url, outcome, failed_step, detail
		FROM installs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying install records: %w", err)
	}
	defer rows.Close()

	var recs []types.InstallRecord
	for rows.Next() {
		var rec types.InstallRecord
		var started, finished, outcome, step string
		if err := rows.Scan(&rec.ID, &started, &finished, &rec.ArchiveURL, &outcome, &step, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scanning install record: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339, started)
		rec.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		rec.Outcome = types.Outcome(outcome)
		rec.FailedStep = types.Step(step)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
