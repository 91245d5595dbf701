package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// ErrInvalidTransition indicates an attempted status change the transition
// table forbids. It signals a programming bug in the caller, not a
// retryable condition.
var ErrInvalidTransition = errors.New("invalid status transition")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	// Complaint records.
	ComplaintExists(ctx context.Context, dedupKey string) (bool, error)
	InsertComplaint(ctx context.Context, c *models.Complaint) error
	NextComplaintSeq(ctx context.Context) (int64, error)
	GetComplaint(ctx context.Context, id string) (*models.Complaint, error)
	FindComplaint(ctx context.Context, idOrOrderID string) (*models.Complaint, error)
	ListComplaintsByStatus(ctx context.Context, statuses []models.Status) ([]*models.Complaint, error)
	ListComplaints(ctx context.Context, filter ComplaintFilter) ([]*models.Complaint, int, error)
	MarkComplaintProcessed(ctx context.Context, id string, analysis models.ComplaintAnalysis, processedAt time.Time) error
	MarkComplaintFailed(ctx context.Context, id string, processedAt time.Time) error
	ResetComplaint(ctx context.Context, id string) error
	Summary(ctx context.Context) (*models.Summary, error)

	// Administrative overrides, outside the normal state machine.
	MarkAllUnprocessed(ctx context.Context) (int64, error)
	PurgeComplaints(ctx context.Context) (int64, error)

	// Batch jobs.
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error

	// API keys.
	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}

// ComplaintFilter narrows and pages ListComplaints. A zero Status means
// no status filter.
type ComplaintFilter struct {
	Status  models.Status
	OrderID string
	Page    int
	Limit   int
}

type jobUpdateParams struct {
	ErrorMessage *string
	Counts       *JobCounts
}

// JobCounts is the aggregate report recorded on a completed batch job.
type JobCounts struct {
	Selected  int
	Succeeded int
	Failed    int
}

type JobUpdateOption func(*jobUpdateParams)

func WithErrorMessage(msg string) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.ErrorMessage = &msg
	}
}

func WithCounts(c JobCounts) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.Counts = &c
	}
}
