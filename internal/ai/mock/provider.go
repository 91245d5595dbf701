package mock

import (
	"context"

	"github.com/nikhilraghav/complaintdesk/internal/ai"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

// MockProvider satisfies models.AIProvider for testing.
type MockProvider struct {
	Name_       string
	AnalyzeFunc func(ctx context.Context, req models.AnalysisRequest) (models.ComplaintAnalysis, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Analyze(ctx context.Context, req models.AnalysisRequest) (models.ComplaintAnalysis, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	return models.ComplaintAnalysis{}, nil
}

// NewMockProvider returns a MockProvider with sensible default responses.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		AnalyzeFunc: func(_ context.Context, req models.AnalysisRequest) (models.ComplaintAnalysis, error) {
			return models.ComplaintAnalysis{
				Category:          "Product Quality",
				Importance:        models.ImportanceMedium,
				RootCause:         "Simulated root cause from mock provider",
				SuggestedResponse: "Simulated suggested response for " + req.OrderID,
				Provider:          "mock",
				Model:             "mock-v1",
			}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		AnalyzeFunc: func(_ context.Context, _ models.AnalysisRequest) (models.ComplaintAnalysis, error) {
			return models.ComplaintAnalysis{}, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		AnalyzeFunc: func(ctx context.Context, _ models.AnalysisRequest) (models.ComplaintAnalysis, error) {
			<-ctx.Done()
			return models.ComplaintAnalysis{}, ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
