package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nikhilraghav/complaintdesk/internal/api/response"
	"github.com/nikhilraghav/complaintdesk/internal/cache"
	"github.com/nikhilraghav/complaintdesk/internal/chart"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

const summaryCacheTTL = 30 * time.Second

// SummaryStore is the slice of the store the summary handlers need.
type SummaryStore interface {
	Summary(ctx context.Context) (*models.Summary, error)
}

// loadSummary reads the cached aggregate or computes and caches it.
func loadSummary(ctx context.Context, st SummaryStore, ca cache.Cache) (*models.Summary, error) {
	if raw, ok, _ := ca.Get(ctx, cache.SummaryKey()); ok {
		var cached models.Summary
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	summary, err := st.Summary(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(summary); err == nil {
		_ = ca.Set(ctx, cache.SummaryKey(), raw, summaryCacheTTL)
	}
	return summary, nil
}

// NewSummaryHandler returns an http.HandlerFunc for GET /api/v1/summary.
func NewSummaryHandler(st SummaryStore, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := loadSummary(r.Context(), st, ca)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to compute summary", nil)
			return
		}
		response.JSON(w, summary)
	}
}

// NewSummaryChartHandler returns an http.HandlerFunc for
// GET /api/v1/summary/chart, answering with a PNG.
func NewSummaryChartHandler(st SummaryStore, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := loadSummary(r.Context(), st, ca)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to compute summary", nil)
			return
		}

		png, err := chart.RenderSummary(summary, time.Now())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to render chart", nil)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}
