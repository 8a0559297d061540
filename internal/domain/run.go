package domain

import "time"

// RunStatus is the outcome of an import run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusError   RunStatus = "error"
)

// ImportRun is the historical record of one import run.
type ImportRun struct {
	ID           string    `json:"id"`
	JobName      string    `json:"jobName"`
	Trigger      string    `json:"trigger"` // "manual" | "schedule" | "file_watch"
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	Status       RunStatus `json:"status"`
	DocsRead     int       `json:"docsRead"`
	DocsRejected int       `json:"docsRejected"`
	RowsWritten  int       `json:"rowsWritten"`
	Error        string    `json:"error,omitempty"`
}

// RunStore persists import runs.
type RunStore interface {
	CreateRun(r *ImportRun) error
	ListRuns(jobName string, limit int) ([]ImportRun, error)
}
