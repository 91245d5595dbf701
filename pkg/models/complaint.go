// Package models contains shared data models used across the ComplaintDesk codebase.
package models

import (
	"fmt"
	"time"
)

// Status is the processing state of a complaint. The set is closed;
// transitions between states are validated by the store.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// Valid reports whether s is one of the recognized statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessed, StatusFailed:
		return true
	}
	return false
}

// ComplaintID formats a sequence number as a record identifier.
func ComplaintID(seq int64) string {
	return fmt.Sprintf("COMP-%06d", seq)
}

// Complaint is one customer complaint and its processing state.
//
// IDs have the form COMP-000042; Seq holds the numeric part and is the
// basis for sequential allocation. IDs are never reused or reassigned.
// The analysis columns are non-null exactly when Status is processed.
type Complaint struct {
	ID       string            `db:"id"        json:"id"`
	Seq      int64             `db:"seq"       json:"-"`
	OrderID  string            `db:"order_id"  json:"order_id"`
	DedupKey string            `db:"dedup_key" json:"-"`
	Fields   map[string]string `db:"fields"    json:"fields"`
	Status   Status            `db:"status"    json:"status"`

	// Analysis output, populated only on transition to processed.
	Category          *string `db:"category"           json:"category,omitempty"`
	Importance        *string `db:"importance"         json:"importance,omitempty"`
	RootCause         *string `db:"root_cause"         json:"root_cause,omitempty"`
	SuggestedResponse *string `db:"suggested_response" json:"suggested_response,omitempty"`

	ReceivedAt  *time.Time `db:"received_at"  json:"received_at,omitempty"`
	ProcessedAt *time.Time `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"   json:"updated_at"`
}

// Summary is a read-only aggregation over all complaints.
type Summary struct {
	Total       int     `json:"total"`
	Processed   int     `json:"processed"`
	Pending     int     `json:"pending"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"` // processed/total as a percentage

	TopCategory        *string  `json:"top_category,omitempty"`
	TopImportance      *string  `json:"top_importance,omitempty"`
	AvgProcessingHours *float64 `json:"avg_processing_hours,omitempty"`
}
