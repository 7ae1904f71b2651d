// Package journal persists every generated execution row before it is
// published. It doubles as an outbox: rows are drained to the stream in
// index order, and the highest journaled index lets a restarted feed
// resume its counter without gaps.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ratesdesk/execfeed/internal/msg"
	"github.com/ratesdesk/execfeed/internal/synth"
)

// ErrOutOfOrder is returned when a journaled row would break index
// contiguity.
var ErrOutOfOrder = errors.New("journal append out of order")

// Store is the sqlite-backed feed journal
type Store struct {
	db *sql.DB
}

// Row is one journaled execution row
type Row struct {
	Index               int64
	ExecID              string
	EventID             string
	PayloadJSON         string
	CreatedUnixMillis   int64
	PublishedUnixMillis sql.NullInt64
}

// Open creates or opens the feed journal
func Open(path string) (*Store, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// migrate creates the necessary tables
func (s *Store) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS feed_rows (
			ii INTEGER PRIMARY KEY,
			exec_id TEXT NOT NULL UNIQUE,
			event_id TEXT NOT NULL UNIQUE,
			payload_json TEXT NOT NULL,
			created_unix_millis INTEGER NOT NULL,
			published_unix_millis INTEGER NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feed_rows_unpublished
			ON feed_rows(ii)
			WHERE published_unix_millis IS NULL`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// AppendRecord wraps rec in a fresh envelope and journals it.
func (s *Store) AppendRecord(ctx context.Context, rec synth.ExecutionRecord) error {
	m := msg.NewExecutionMsg(rec)
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal execution envelope: %w", err)
	}
	return s.Append(ctx, m, string(payload))
}

// Append journals one execution envelope. The row index must be exactly
// one past the highest journaled index (or 0 for an empty journal).
func (s *Store) Append(ctx context.Context, m msg.ExecutionMsg, payloadJSON string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var last int64
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(ii), -1) FROM feed_rows",
	).Scan(&last)
	if err != nil {
		return fmt.Errorf("failed to read last index: %w", err)
	}

	if m.Record.Index != last+1 {
		return fmt.Errorf("%w: got index %d, want %d", ErrOutOfOrder, m.Record.Index, last+1)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO feed_rows (ii, exec_id, event_id, payload_json, created_unix_millis, published_unix_millis)
		 VALUES (?, ?, ?, ?, ?, NULL)`,
		m.Record.Index, m.Record.ExecID, m.EventID, payloadJSON, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert feed row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LastIndex returns the highest journaled row index, or -1 for an empty
// journal. A restarting feed resumes its counter at LastIndex()+1.
func (s *Store) LastIndex(ctx context.Context) (int64, error) {
	var last int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(ii), -1) FROM feed_rows",
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to read last index: %w", err)
	}
	return last, nil
}

// ListUnpublished returns unpublished rows in index order
func (s *Store) ListUnpublished(ctx context.Context, limit int) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ii, exec_id, event_id, payload_json, created_unix_millis, published_unix_millis
		 FROM feed_rows
		 WHERE published_unix_millis IS NULL
		 ORDER BY ii ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query unpublished rows: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		err := rows.Scan(
			&r.Index, &r.ExecID, &r.EventID, &r.PayloadJSON,
			&r.CreatedUnixMillis, &r.PublishedUnixMillis,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// MarkPublished marks a row as published
func (s *Store) MarkPublished(ctx context.Context, ii int64, nowMillis int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE feed_rows SET published_unix_millis = ? WHERE ii = ?",
		nowMillis, ii,
	)
	if err != nil {
		return fmt.Errorf("failed to mark row as published: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
