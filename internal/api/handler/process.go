package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikhilraghav/complaintdesk/internal/ai"
	"github.com/nikhilraghav/complaintdesk/internal/api/response"
	"github.com/nikhilraghav/complaintdesk/internal/cache"
	"github.com/nikhilraghav/complaintdesk/internal/store"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

// Processor defines the interface the process handler depends on.
type Processor interface {
	TriggerProcessing(ctx context.Context, mode string) (*models.Job, error)
}

// JobStore is the slice of the store the poll handler needs.
type JobStore interface {
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// NewProcessHandler returns an http.HandlerFunc for POST /api/v1/process.
func NewProcessHandler(svc Processor, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.Mode == "" {
			req.Mode = ai.ModeNewOnly
		}
		if !ai.ValidMode(req.Mode) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"mode must be one of new_only, unprocessed_only, pending_and_failed, all", nil)
			return
		}

		job, err := svc.TriggerProcessing(r.Context(), req.Mode)
		if err != nil {
			if errors.Is(err, ai.ErrProcessingInProgress) {
				response.Error(w, http.StatusConflict, "PROCESSING_IN_PROGRESS",
					"Another processing batch is already running", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to start processing", nil)
			return
		}

		// A completed batch changes the summary.
		_ = ca.Delete(r.Context(), cache.SummaryKey())

		response.Accepted(w, job)
	}
}

// NewPollJobHandler returns an http.HandlerFunc for GET /api/v1/process/{jobID}.
// Non-terminal statuses are answered from Redis without touching the store.
func NewPollJobHandler(st JobStore, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a UUID", nil)
			return
		}

		if status, ok, _ := ca.GetJobStatus(r.Context(), jobID); ok {
			if status == models.JobStatusPending || status == models.JobStatusRunning {
				response.JSON(w, map[string]any{"id": jobID, "status": status})
				return
			}
		}

		job, err := st.GetJob(r.Context(), jobID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load job", nil)
			return
		}

		response.JSON(w, job)
	}
}
