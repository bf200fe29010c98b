package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mimicbot/mimic/internal/common"
	"github.com/mimicbot/mimic/internal/retry"
)

// PostgresStore persists step runs in PostgreSQL via the pgx stdlib driver.
type PostgresStore struct {
	DSN string
	db  *sql.DB
}

// NewPostgresStore returns a store for the given DSN.
func NewPostgresStore(dsn string) *PostgresStore {
	return &PostgresStore{DSN: dsn}
}

func (p *PostgresStore) Connect() error {
	db, err := sql.Open("pgx", p.DSN)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	p.db = db
	common.GetLogger().WithStore(DriverPostgres).Debug("database connection established")
	return nil
}

func (p *PostgresStore) Ensure() error {
	_, err := p.db.Exec(`CREATE TABLE IF NOT EXISTS step_runs (
		id BIGSERIAL PRIMARY KEY,
		worker_id TEXT NOT NULL,
		step TEXT NOT NULL,
		outcome TEXT NOT NULL,
		failed BOOLEAN NOT NULL,
		elapsed_ms BIGINT NOT NULL,
		body TEXT,
		ran_at TIMESTAMPTZ NOT NULL
	)`)
	return err
}

func (p *PostgresStore) RecordRun(r Run) error {
	ranAt := r.RanAt
	if ranAt.IsZero() {
		ranAt = time.Now().UTC()
	}
	return retry.Do(context.Background(), nil, func() error {
		_, err := p.db.Exec(
			`INSERT INTO step_runs(worker_id, step, outcome, failed, elapsed_ms, body, ran_at) VALUES($1, $2, $3, $4, $5, $6, $7)`,
			r.WorkerID, r.Step, r.Outcome, r.Failed, r.ElapsedMS, r.Body, ranAt,
		)
		return err
	})
}

func (p *PostgresStore) ListRuns(workerID string) ([]Run, error) {
	rows, err := p.db.Query(
		`SELECT id, worker_id, step, outcome, failed, elapsed_ms, body, ran_at FROM step_runs WHERE worker_id = $1 ORDER BY id ASC`,
		workerID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.WorkerID, &r.Step, &r.Outcome, &r.Failed, &r.ElapsedMS, &r.Body, &r.RanAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}
