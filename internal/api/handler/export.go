package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikhilraghav/complaintdesk/internal/api/response"
	"github.com/nikhilraghav/complaintdesk/internal/export"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

// ExportStore is the slice of the store the export handler needs.
type ExportStore interface {
	ListComplaintsByStatus(ctx context.Context, statuses []models.Status) ([]*models.Complaint, error)
}

// NewExportHandler returns an http.HandlerFunc for GET /api/v1/export.
// The full record set is streamed as a CSV attachment.
func NewExportHandler(st ExportStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		complaints, err := st.ListComplaintsByStatus(r.Context(), []models.Status{
			models.StatusPending, models.StatusProcessed, models.StatusFailed,
		})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to load complaints for export", nil)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", export.Filename(time.Now())))
		w.WriteHeader(http.StatusOK)

		if err := export.WriteCSV(w, complaints); err != nil {
			// Headers are gone; all we can do is log.
			slog.Error("csv export aborted", "error", err)
		}
	}
}
