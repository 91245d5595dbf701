package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/nikhilraghav/complaintdesk/internal/api/response"
	"github.com/nikhilraghav/complaintdesk/internal/cache"
	"github.com/nikhilraghav/complaintdesk/internal/ingest"
	"github.com/nikhilraghav/complaintdesk/internal/source"
)

// IngestResolver defines the interface the ingest handler depends on.
type IngestResolver interface {
	Ingest(ctx context.Context, rows []source.Row) (ingest.Report, error)
}

// NewIngestHandler returns an http.HandlerFunc for POST /api/v1/ingest.
// Fetch and resolve run synchronously; a source failure aborts before any
// write happens.
func NewIngestHandler(src source.Client, resolver IngestResolver, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := src.FetchRows(r.Context())
		if err != nil {
			switch {
			case errors.Is(err, source.ErrSourceTimeout):
				response.Error(w, http.StatusGatewayTimeout, "SOURCE_TIMEOUT",
					"The complaint source took too long to respond", nil)
			case errors.Is(err, source.ErrSourceFormat):
				response.Error(w, http.StatusBadGateway, "SOURCE_FORMAT",
					"The complaint source returned malformed data", nil)
			case errors.Is(err, source.ErrSourceUnavailable):
				response.Error(w, http.StatusBadGateway, "SOURCE_UNAVAILABLE",
					"The complaint source is not reachable", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		report, err := resolver.Ingest(r.Context(), rows)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to persist new complaints", nil)
			return
		}

		if report.New > 0 {
			_ = ca.Delete(r.Context(), cache.SummaryKey())
		}

		response.JSON(w, report)
	}
}
