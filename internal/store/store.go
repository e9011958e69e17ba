// Package store caches fetched chat days in SQLite so re-running an
// analysis over an already-fetched range skips the remote API, and keeps
// bookkeeping for analysis runs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ask_analytics/lh3"
)

// Run status values.
const (
	RunRunning = "running"
	RunOK      = "ok"
	RunFailed  = "failed"
	RunSkipped = "skipped"
)

// Store wraps SQLite access for the day cache and run log.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_days (
            day TEXT PRIMARY KEY,
            fetched_at TIMESTAMP,
            record_count INTEGER,
            payload_json TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS analysis_runs (
            run_id TEXT PRIMARY KEY,
            scope TEXT,
            start_day TEXT,
            end_day TEXT,
            status TEXT,
            record_count INTEGER,
            error TEXT,
            started_at TIMESTAMP,
            finished_at TIMESTAMP
        );`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const dayKeyLayout = "2006-01-02"

// GetDay returns the cached records for one calendar day, if present.
func (s *Store) GetDay(ctx context.Context, day time.Time) ([]lh3.Chat, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload_json FROM chat_days WHERE day = ?`, day.Format(dayKeyLayout))
	var payload string
	switch err := row.Scan(&payload); err {
	case nil:
	case sql.ErrNoRows:
		return nil, false, nil
	default:
		return nil, false, err
	}
	var chats []lh3.Chat
	if err := json.Unmarshal([]byte(payload), &chats); err != nil {
		return nil, false, fmt.Errorf("corrupt cache for %s: %w", day.Format(dayKeyLayout), err)
	}
	return chats, true, nil
}

// PutDay caches one day's records, replacing any previous entry.
func (s *Store) PutDay(ctx context.Context, day time.Time, chats []lh3.Chat) error {
	payload, err := json.Marshal(chats)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO chat_days(day, fetched_at, record_count, payload_json)
        VALUES(?, ?, ?, ?)
        ON CONFLICT(day) DO UPDATE SET fetched_at=excluded.fetched_at, record_count=excluded.record_count, payload_json=excluded.payload_json`,
		day.Format(dayKeyLayout), time.Now().UTC(), len(chats), string(payload))
	return err
}

// StartRun records the beginning of an analysis invocation and returns
// its run id.
func (s *Store) StartRun(ctx context.Context, scope string, start, end time.Time) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO analysis_runs(run_id, scope, start_day, end_day, status, started_at)
        VALUES(?, ?, ?, ?, ?, ?)`,
		runID, scope, start.Format(dayKeyLayout), end.Format(dayKeyLayout), RunRunning, time.Now().UTC())
	if err != nil {
		return "", err
	}
	return runID, nil
}

// FinishRun closes out a run with its status and row count.
func (s *Store) FinishRun(ctx context.Context, runID, status string, recordCount int, errMsg string) error {
	if runID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `UPDATE analysis_runs SET status=?, record_count=?, error=?, finished_at=? WHERE run_id=?`,
		status, recordCount, errMsg, time.Now().UTC(), runID)
	return err
}

// Run is one logged analysis invocation.
type Run struct {
	RunID       string
	Scope       string
	StartDay    string
	EndDay      string
	Status      string
	RecordCount int
	Error       string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, scope, start_day, end_day, status, COALESCE(record_count, 0), COALESCE(error, ''), started_at, finished_at
        FROM analysis_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var r Run
		var finished sql.NullTime
		if err := rows.Scan(&r.RunID, &r.Scope, &r.StartDay, &r.EndDay, &r.Status, &r.RecordCount, &r.Error, &r.StartedAt, &finished); err != nil {
			return nil, err
		}
		if finished.Valid {
			r.FinishedAt = &finished.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Health returns err if the DB is not reachable.
func (s *Store) Health(ctx context.Context) error {
	row := s.db.QueryRowContext(ctx, `SELECT 1`)
	var v int
	if err := row.Scan(&v); err != nil {
		return fmt.Errorf("db health: %w", err)
	}
	return nil
}
