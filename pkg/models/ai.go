package models

import "context"

// AIProvider is the core interface that all AI integrations must implement.
// Never call specific AI providers directly — always inject this interface.
type AIProvider interface {
	// Analyze classifies a single complaint and proposes a response.
	Analyze(ctx context.Context, req AnalysisRequest) (ComplaintAnalysis, error)
	// Name returns the provider identifier (e.g., "openrouter", "anthropic").
	Name() string
}

// AnalysisRequest is the input to an AI analysis operation.
type AnalysisRequest struct {
	ComplaintID string
	OrderID     string
	Fields      map[string]string // Raw source columns; the provider builds its prompt from these
}

// Importance levels recognized in analysis output. Anything else coming
// back from a provider is clamped to ImportanceMedium.
const (
	ImportanceLow      = "low"
	ImportanceMedium   = "medium"
	ImportanceHigh     = "high"
	ImportanceCritical = "critical"
)

// ValidImportance reports whether v is a recognized importance level.
func ValidImportance(v string) bool {
	switch v {
	case ImportanceLow, ImportanceMedium, ImportanceHigh, ImportanceCritical:
		return true
	}
	return false
}

// ComplaintAnalysis holds AI-generated analysis output for one complaint.
type ComplaintAnalysis struct {
	Category          string `json:"category"`
	Importance        string `json:"importance"`
	RootCause         string `json:"root_cause"`
	SuggestedResponse string `json:"suggested_response"`

	Provider string `json:"provider"`
	Model    string `json:"model"`
}
