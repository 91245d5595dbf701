package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilraghav/complaintdesk/internal/config"
	"github.com/nikhilraghav/complaintdesk/internal/source"
	"github.com/nikhilraghav/complaintdesk/internal/store"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

// ComplaintStore is the slice of the store the resolver needs.
type ComplaintStore interface {
	ComplaintExists(ctx context.Context, dedupKey string) (bool, error)
	NextComplaintSeq(ctx context.Context) (int64, error)
	InsertComplaint(ctx context.Context, c *models.Complaint) error
}

// Report is the aggregate outcome of one ingestion pass.
type Report struct {
	New              int `json:"new"`
	SkippedDuplicate int `json:"skipped_duplicate"`
}

// Resolver ingests normalized candidate rows, assigning ids in source
// order. Re-running over an unchanged source is a no-op beyond the first
// run.
type Resolver struct {
	store ComplaintStore
	cfg   config.IngestConfig
}

// NewResolver creates a new Resolver.
func NewResolver(s ComplaintStore, cfg config.IngestConfig) *Resolver {
	return &Resolver{store: s, cfg: cfg}
}

// Ingest persists every genuinely new row as a pending complaint and
// counts duplicates as skips. Ids are assigned in source order; a store
// failure aborts the pass and returns the counts accumulated so far.
func (r *Resolver) Ingest(ctx context.Context, rows []source.Row) (Report, error) {
	var report Report

	for _, row := range rows {
		key := Fingerprint(row.OrderID, row.Fields, r.cfg.DedupFields)

		exists, err := r.store.ComplaintExists(ctx, key)
		if err != nil {
			return report, fmt.Errorf("checking dedup key: %w", err)
		}
		if exists {
			report.SkippedDuplicate++
			continue
		}

		seq, err := r.store.NextComplaintSeq(ctx)
		if err != nil {
			return report, fmt.Errorf("allocating id: %w", err)
		}

		now := time.Now().UTC()
		c := &models.Complaint{
			ID:         models.ComplaintID(seq),
			Seq:        seq,
			OrderID:    row.OrderID,
			DedupKey:   key,
			Fields:     row.Fields,
			Status:     models.StatusPending,
			ReceivedAt: r.parseReceivedAt(row.Fields),
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		err = r.store.InsertComplaint(ctx, c)
		if errors.Is(err, store.ErrDuplicateKey) {
			// Benign race with another ingestion pass.
			report.SkippedDuplicate++
			continue
		}
		if err != nil {
			return report, fmt.Errorf("inserting complaint %s: %w", c.ID, err)
		}

		slog.Info("ingested complaint", "id", c.ID, "order_id", c.OrderID)
		report.New++
	}

	return report, nil
}

// receivedAtLayouts covers the timestamp formats spreadsheet sources emit.
var receivedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04:05",
}

func (r *Resolver) parseReceivedAt(fields map[string]string) *time.Time {
	raw := fields[r.cfg.ReceivedAtField]
	if raw == "" {
		return nil
	}
	for _, layout := range receivedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	slog.Warn("unparseable received timestamp", "value", raw)
	return nil
}
