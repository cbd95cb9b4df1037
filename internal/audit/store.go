// Package audit records the queries the reference engine receives in a
// SQLite database, so operators can see what was run, rejected or failed.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	// sqlite driver
	_ "modernc.org/sqlite"
)

// Entry is one audited query.
type Entry struct {
	ID            string        `json:"id" yaml:"id"`
	RequestID     string        `json:"requestId,omitempty" yaml:"request_id,omitempty"`
	Query         string        `json:"query" yaml:"query"`
	StatementType string        `json:"statementType,omitempty" yaml:"statement_type,omitempty"`
	Success       bool          `json:"success" yaml:"success"`
	Rejected      bool          `json:"rejected" yaml:"rejected"`
	RowCount      int           `json:"rowCount" yaml:"row_count"`
	Error         string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration      time.Duration `json:"durationNs" yaml:"duration"`
	CreatedAt     time.Time     `json:"createdAt" yaml:"created_at"`
}

// Status summarizes the outcome: ok, rejected or failed.
func (e Entry) Status() string {
	switch {
	case e.Success:
		return "ok"
	case e.Rejected:
		return "rejected"
	}
	return "failed"
}

// Recorder stores entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Summary counts entries by outcome.
type Summary struct {
	Total    int `json:"total" yaml:"total"`
	Success  int `json:"success" yaml:"success"`
	Rejected int `json:"rejected" yaml:"rejected"`
	Failed   int `json:"failed" yaml:"failed"`
}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("audit store is closed")

// Store is a SQLite-backed Recorder.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ Recorder = (*Store)(nil)

// Open opens or creates the audit database at path and migrates it.
// Use ":memory:" for an in-memory database. A nil logger discards output.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if path == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("audit log opened", "path", path)
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

func buildDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?_pragma=busy_timeout(5000)"
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Record inserts e, assigning an ID and timestamp when they are unset.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s.db == nil {
		return ErrClosed
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO queries (id, request_id, query, statement_type, success, rejected,
			row_count, error, duration_us, created_at_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RequestID, e.Query, e.StatementType, e.Success, e.Rejected,
		e.RowCount, e.Error, e.Duration.Microseconds(), e.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, query, statement_type, success, rejected,
			row_count, error, duration_us, created_at_us
		FROM queries
		ORDER BY created_at_us DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e                    Entry
			durationUS, createdUS int64
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Query, &e.StatementType, &e.Success, &e.Rejected,
			&e.RowCount, &e.Error, &durationUS, &createdUS); err != nil {
			return nil, fmt.Errorf("failed to scan query: %w", err)
		}
		e.Duration = time.Duration(durationUS) * time.Microsecond
		e.CreatedAt = time.UnixMicro(createdUS).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating queries: %w", err)
	}
	return entries, nil
}

// Summarize counts all entries by outcome.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	if s.db == nil {
		return Summary{}, ErrClosed
	}

	var sum Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN success = 0 AND rejected = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN success = 0 AND rejected = 0 THEN 1 ELSE 0 END), 0)
		FROM queries`).Scan(&sum.Total, &sum.Success, &sum.Rejected, &sum.Failed)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to summarize queries: %w", err)
	}
	return sum, nil
}
