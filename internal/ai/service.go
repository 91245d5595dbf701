package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikhilraghav/complaintdesk/internal/cache"
	"github.com/nikhilraghav/complaintdesk/internal/store"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

// Selection modes for a processing batch.
const (
	ModeNewOnly          = "new_only"
	ModeUnprocessedOnly  = "unprocessed_only"
	ModePendingAndFailed = "pending_and_failed"
	ModeAll              = "all"
)

// ValidMode reports whether mode is a recognized selection mode.
func ValidMode(mode string) bool {
	switch mode {
	case ModeNewOnly, ModeUnprocessedOnly, ModePendingAndFailed, ModeAll:
		return true
	}
	return false
}

// ErrProcessingInProgress is returned when a batch is triggered while
// another one is still running.
var ErrProcessingInProgress = errors.New("a processing batch is already in progress")

// Report is the aggregate outcome of one processing batch.
type Report struct {
	Selected  int `json:"selected"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ProcessorService runs AI analysis over complaint batches.
type ProcessorService struct {
	provider models.AIProvider
	store    store.Store
	cache    cache.Cache
	timeout  time.Duration

	mu       sync.Mutex
	inFlight bool
}

// NewProcessorService creates a new ProcessorService.
func NewProcessorService(provider models.AIProvider, st store.Store, ca cache.Cache, timeout time.Duration) *ProcessorService {
	return &ProcessorService{
		provider: provider,
		store:    st,
		cache:    ca,
		timeout:  timeout,
	}
}

// selectComplaints returns the batch for the given mode, in seq order.
func (s *ProcessorService) selectComplaints(ctx context.Context, mode string) ([]*models.Complaint, error) {
	var statuses []models.Status
	switch mode {
	case ModeNewOnly, ModeUnprocessedOnly:
		statuses = []models.Status{models.StatusPending}
	case ModePendingAndFailed:
		statuses = []models.Status{models.StatusPending, models.StatusFailed}
	case ModeAll:
		statuses = []models.Status{models.StatusPending, models.StatusFailed, models.StatusProcessed}
	default:
		return nil, fmt.Errorf("unknown processing mode %q", mode)
	}

	complaints, err := s.store.ListComplaintsByStatus(ctx, statuses)
	if err != nil {
		return nil, fmt.Errorf("selecting complaints: %w", err)
	}

	if mode == ModeNewOnly {
		// new_only excludes records that already went through an attempt.
		fresh := complaints[:0]
		for _, c := range complaints {
			if c.ProcessedAt == nil {
				fresh = append(fresh, c)
			}
		}
		complaints = fresh
	}

	return complaints, nil
}

// Process runs one synchronous batch: select by mode, then analyze each
// record in seq order. A provider failure marks that record failed and the
// loop moves on; a store mutation failure aborts the batch. Every record
// the loop completes is left in a terminal, durable status, so a crashed
// batch resumes with the next pending_and_failed pass.
func (s *ProcessorService) Process(ctx context.Context, mode string) (Report, error) {
	if err := s.acquire(); err != nil {
		return Report{}, err
	}
	defer s.release()

	return s.process(ctx, mode)
}

func (s *ProcessorService) process(ctx context.Context, mode string) (Report, error) {
	complaints, err := s.selectComplaints(ctx, mode)
	if err != nil {
		return Report{}, err
	}

	report := Report{Selected: len(complaints)}
	for _, c := range complaints {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		analysisCtx, cancel := context.WithTimeout(ctx, s.timeout)
		analysis, err := s.provider.Analyze(analysisCtx, models.AnalysisRequest{
			ComplaintID: c.ID,
			OrderID:     c.OrderID,
			Fields:      c.Fields,
		})
		cancel()

		now := time.Now().UTC()
		if err != nil {
			slog.Error("complaint analysis failed",
				"complaint_id", c.ID,
				"order_id", c.OrderID,
				"provider", s.provider.Name(),
				"error", err)
			if markErr := s.store.MarkComplaintFailed(ctx, c.ID, now); markErr != nil {
				return report, fmt.Errorf("marking complaint %s failed: %w", c.ID, markErr)
			}
			report.Failed++
			continue
		}

		analysis = sanitizeAnalysis(analysis)
		if err := s.store.MarkComplaintProcessed(ctx, c.ID, analysis, now); err != nil {
			return report, fmt.Errorf("marking complaint %s processed: %w", c.ID, err)
		}
		report.Succeeded++
	}

	return report, nil
}

// TriggerProcessing creates a pending job and runs the batch in a
// background goroutine. Returns the job immediately, or
// ErrProcessingInProgress when a batch is already running.
func (s *ProcessorService) TriggerProcessing(ctx context.Context, mode string) (*models.Job, error) {
	if !ValidMode(mode) {
		return nil, fmt.Errorf("unknown processing mode %q", mode)
	}

	if err := s.acquire(); err != nil {
		return nil, err
	}

	job := &models.Job{
		ID:        uuid.New(),
		Type:      "process",
		Status:    models.JobStatusPending,
		Mode:      mode,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		s.release()
		return nil, fmt.Errorf("creating job: %w", err)
	}

	_ = s.cache.SetJobStatus(ctx, job.ID, models.JobStatusPending, 30*time.Minute)

	go s.runBatch(job.ID, mode)

	return job, nil
}

// runBatch performs the batch in a goroutine. It recovers from panics and
// always marks the job completed or failed.
func (s *ProcessorService) runBatch(jobID uuid.UUID, mode string) {
	defer s.release()

	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in runBatch", "error", r, "job_id", jobID)
			_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed,
				store.WithErrorMessage(fmt.Sprintf("panic: %v", r)))
			_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusFailed, 30*time.Minute)
		}
	}()

	_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusRunning)
	_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusRunning, 30*time.Minute)

	report, err := s.process(ctx, mode)
	counts := store.JobCounts{
		Selected:  report.Selected,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
	}
	if err != nil {
		_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed,
			store.WithErrorMessage(err.Error()), store.WithCounts(counts))
		_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusFailed, 30*time.Minute)
		return
	}

	_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusCompleted,
		store.WithCounts(counts))
	_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusCompleted, 30*time.Minute)
}

func (s *ProcessorService) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrProcessingInProgress
	}
	s.inFlight = true
	return nil
}

func (s *ProcessorService) release() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}
