package storage

import (
	"fmt"

	"github.com/google/uuid"

	"jsonadaptor/internal/domain"
)

// RunStore implements domain.RunStore on SQLite.
type RunStore struct {
	db *DB
}

var _ domain.RunStore = (*RunStore)(nil)

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// CreateRun assigns r a new ID and stores it.
func (s *RunStore) CreateRun(r *domain.ImportRun) error {
	r.ID = uuid.New().String()
	trigger := r.Trigger
	if trigger == "" {
		trigger = "manual"
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO import_runs (id, job_name, trigger_type, started_at, finished_at, status,
		 docs_read, docs_rejected, rows_written, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.JobName, trigger, r.StartedAt.UTC(), r.FinishedAt.UTC(), string(r.Status),
		r.DocsRead, r.DocsRejected, r.RowsWritten, r.Error,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// ListRuns returns the latest runs of jobName, newest first.
func (s *RunStore) ListRuns(jobName string, limit int) ([]domain.ImportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.conn.Query(
		`SELECT id, job_name, trigger_type, started_at, finished_at, status,
		 docs_read, docs_rejected, rows_written, error
		 FROM import_runs WHERE job_name = ? ORDER BY started_at DESC LIMIT ?`,
		jobName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.ImportRun
	for rows.Next() {
		var r domain.ImportRun
		var status string
		if err := rows.Scan(&r.ID, &r.JobName, &r.Trigger, &r.StartedAt, &r.FinishedAt, &status,
			&r.DocsRead, &r.DocsRejected, &r.RowsWritten, &r.Error); err != nil {
			return nil, err
		}
		r.Status = domain.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
