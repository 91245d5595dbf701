package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job tracks one asynchronous processing batch. POST /api/v1/process
// returns a job_id; the client polls GET /api/v1/process/{job_id} until
// status is completed or failed. The counts form the batch's aggregate
// report.
type Job struct {
	ID           uuid.UUID  `db:"id"            json:"id"`
	Type         string     `db:"type"          json:"type"`
	Status       string     `db:"status"        json:"status"`
	Mode         string     `db:"mode"          json:"mode"`
	Selected     int        `db:"selected"      json:"selected"`
	Succeeded    int        `db:"succeeded"     json:"succeeded"`
	Failed       int        `db:"failed"        json:"failed"`
	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
	StartedAt    *time.Time `db:"started_at"    json:"started_at,omitempty"`
	CompletedAt  *time.Time `db:"completed_at"  json:"completed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"    json:"updated_at"`
}
