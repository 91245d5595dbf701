// Package export renders complaint records as CSV for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

// Filename returns the timestamped attachment name for an export.
func Filename(now time.Time) string {
	return fmt.Sprintf("complaints_export_%s.csv", now.Format("2006-01-02_150405"))
}

// fixed columns written before the source fields.
var headColumns = []string{"Complaint ID", "Order ID", "Status"}

// fixed columns written after the source fields.
var tailColumns = []string{
	"Category", "Importance", "Root Cause", "Suggested Response",
	"Received At", "Processed At",
}

// WriteCSV streams complaints to w. Source field columns are the union of
// field names across all records, sorted, so the layout is deterministic
// regardless of which rows carry which columns.
func WriteCSV(w io.Writer, complaints []*models.Complaint) error {
	fieldNames := collectFieldNames(complaints)

	cw := csv.NewWriter(w)

	header := make([]string, 0, len(headColumns)+len(fieldNames)+len(tailColumns))
	header = append(header, headColumns...)
	header = append(header, fieldNames...)
	header = append(header, tailColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	row := make([]string, len(header))
	for _, c := range complaints {
		row = row[:0]
		row = append(row, c.ID, c.OrderID, string(c.Status))
		for _, name := range fieldNames {
			row = append(row, c.Fields[name])
		}
		row = append(row,
			deref(c.Category), deref(c.Importance),
			deref(c.RootCause), deref(c.SuggestedResponse),
			formatTime(c.ReceivedAt), formatTime(c.ProcessedAt))
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", c.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func collectFieldNames(complaints []*models.Complaint) []string {
	seen := map[string]struct{}{}
	for _, c := range complaints {
		for name := range c.Fields {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
