package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mimicbot/mimic/internal/common"
	"github.com/mimicbot/mimic/internal/retry"
	_ "modernc.org/sqlite"
)

// SqliteStore persists step runs in a SQLite database.
// Table step_runs(id, worker_id, step, outcome, failed, elapsed_ms, body, ran_at).
type SqliteStore struct {
	DSN string
	db  *sql.DB
}

// NewSqliteStore returns a store for the given DSN. An empty DSN defaults
// to an in-memory database.
func NewSqliteStore(dsn string) *SqliteStore {
	if dsn == "" {
		dsn = ":memory:"
	}
	return &SqliteStore{DSN: dsn}
}

func (s *SqliteStore) Connect() error {
	db, err := sql.Open("sqlite", s.DSN)
	if err != nil {
		return err
	}
	s.db = db
	common.GetLogger().WithStore(DriverSqlite).Debug("database connection established")
	return nil
}

func (s *SqliteStore) Ensure() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS step_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		worker_id TEXT NOT NULL,
		step TEXT NOT NULL,
		outcome TEXT NOT NULL,
		failed INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		body TEXT,
		ran_at TEXT NOT NULL
	)`)
	return err
}

func (s *SqliteStore) RecordRun(r Run) error {
	ranAt := r.RanAt
	if ranAt.IsZero() {
		ranAt = time.Now().UTC()
	}
	// Concurrent workers writing to one file can hit lock contention.
	return retry.Do(context.Background(), nil, func() error {
		_, err := s.db.Exec(
			`INSERT INTO step_runs(worker_id, step, outcome, failed, elapsed_ms, body, ran_at) VALUES(?, ?, ?, ?, ?, ?, ?)`,
			r.WorkerID, r.Step, r.Outcome, boolToInt(r.Failed), r.ElapsedMS, r.Body, ranAt.Format(time.RFC3339),
		)
		return err
	})
}

func (s *SqliteStore) ListRuns(workerID string) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, worker_id, step, outcome, failed, elapsed_ms, body, ran_at FROM step_runs WHERE worker_id = ? ORDER BY id ASC`,
		workerID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var r Run
		var failed int
		var ranAt string
		if err := rows.Scan(&r.ID, &r.WorkerID, &r.Step, &r.Outcome, &failed, &r.ElapsedMS, &r.Body, &ranAt); err != nil {
			return nil, err
		}
		r.Failed = failed != 0
		r.RanAt, _ = time.Parse(time.RFC3339, ranAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
