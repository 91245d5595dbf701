package ai

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

const systemPrompt = `Analyze customer complaints. Output strict JSON with four fields:
- category: short label for the type of issue
- importance: one of low, medium, high, critical
- root_cause: clear description of the underlying issue
- suggested_response: steps to resolve the issue, addressed to the customer`

// buildComplaintText renders the raw source fields into the prompt body.
// Field order is sorted so identical complaints produce identical prompts.
func buildComplaintText(req models.AnalysisRequest) string {
	names := make([]string, 0, len(req.Fields))
	for name := range req.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Complaint %s (order %s)\n", req.ComplaintID, req.OrderID)
	for _, name := range names {
		value := req.Fields[name]
		if value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", name, truncateString(value, 2000))
	}
	return b.String()
}

// parseAnalysis extracts the JSON object from a model completion. Models
// wrap JSON in prose or code fences often enough that we scan for the
// outermost brace window before unmarshalling.
func parseAnalysis(content string) (models.ComplaintAnalysis, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return models.ComplaintAnalysis{}, fmt.Errorf("%w: no JSON object in completion", ErrInvalidResponse)
	}

	var out struct {
		Category          string `json:"category"`
		Importance        string `json:"importance"`
		RootCause         string `json:"root_cause"`
		SuggestedResponse string `json:"suggested_response"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &out); err != nil {
		return models.ComplaintAnalysis{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if out.Category == "" || out.RootCause == "" || out.SuggestedResponse == "" {
		return models.ComplaintAnalysis{}, fmt.Errorf("%w: missing required fields", ErrInvalidResponse)
	}

	return models.ComplaintAnalysis{
		Category:          out.Category,
		Importance:        out.Importance,
		RootCause:         out.RootCause,
		SuggestedResponse: out.SuggestedResponse,
	}, nil
}

// sanitizeAnalysis clamps importance to the closed set and truncates text
// fields before they reach the store.
func sanitizeAnalysis(a models.ComplaintAnalysis) models.ComplaintAnalysis {
	a.Importance = strings.ToLower(strings.TrimSpace(a.Importance))
	if !models.ValidImportance(a.Importance) {
		a.Importance = models.ImportanceMedium
	}
	a.Category = truncateString(strings.TrimSpace(a.Category), 200)
	a.RootCause = truncateString(a.RootCause, 4000)
	a.SuggestedResponse = truncateString(a.SuggestedResponse, 4000)
	return a
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
