package logstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteSink stores entries in a single-table SQLite database. database/sql
// serializes the writes.
type SQLiteSink struct {
	db *sql.DB
}

func NewSQLiteSink(dataSourceName string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	s := &SQLiteSink{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSink) init() error {
	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		client_id TEXT NOT NULL,
		category TEXT NOT NULL,
		message TEXT NOT NULL
	);`
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("create entries table: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Append(e Entry) error {
	const insertSQL = `INSERT INTO entries(timestamp, client_id, category, message) VALUES(?, ?, ?, ?)`
	_, err := s.db.Exec(insertSQL, e.Time.UTC().Format(TimestampLayout), e.ClientID, e.Category, e.Message)
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

// Entries returns up to limit stored entries in insertion order, offset from
// the start. Inspection helper for tooling; the ingest path never reads.
func (s *SQLiteSink) Entries(offset, limit int) ([]Entry, error) {
	const querySQL = `SELECT timestamp, client_id, category, message FROM entries ORDER BY id LIMIT ? OFFSET ?`
	rows, err := s.db.Query(querySQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&ts, &e.ClientID, &e.Category, &e.Message); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.Time, err = time.Parse(TimestampLayout, ts); err != nil {
			return nil, fmt.Errorf("parse stored timestamp: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
