package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nikhilraghav/complaintdesk/internal/api/response"
	"github.com/nikhilraghav/complaintdesk/internal/store"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

// ComplaintReader is the slice of the store the complaint handlers need.
type ComplaintReader interface {
	ListComplaints(ctx context.Context, filter store.ComplaintFilter) ([]*models.Complaint, int, error)
	FindComplaint(ctx context.Context, idOrOrderID string) (*models.Complaint, error)
}

// NewListComplaintsHandler returns an http.HandlerFunc for GET /api/v1/complaints.
func NewListComplaintsHandler(st ComplaintReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var status models.Status
		if s := q.Get("status"); s != "" {
			status = models.Status(s)
			if !status.Valid() {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"status must be one of pending, processed, failed", nil)
				return
			}
		}

		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))

		filter := store.ComplaintFilter{
			Status:  status,
			OrderID: q.Get("order_id"),
			Page:    page,
			Limit:   limit,
		}

		complaints, total, err := st.ListComplaints(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list complaints", nil)
			return
		}

		if page <= 0 {
			page = 1
		}
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		response.Collection(w, complaints, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
	}
}

// NewGetComplaintHandler returns an http.HandlerFunc for
// GET /api/v1/complaints/{id}. The path segment may be a COMP id or an
// order id.
func NewGetComplaintHandler(st ComplaintReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "id is required", nil)
			return
		}

		c, err := st.FindComplaint(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Complaint not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load complaint", nil)
			return
		}

		response.JSON(w, c)
	}
}
