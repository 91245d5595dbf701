package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/nikhilraghav/complaintdesk/internal/config"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

// AnthropicProvider implements models.AIProvider against the Anthropic
// Messages API.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new AnthropicProvider.
func NewAnthropicProvider(cfg config.AnthropicConfig) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
	}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) Analyze(ctx context.Context, req models.AnalysisRequest) (models.ComplaintAnalysis, error) {
	prompt := fmt.Sprintf("%s\n\n---\n\n%s", systemPrompt, buildComplaintText(req))

	response, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.ComplaintAnalysis{}, fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
		}
		return models.ComplaintAnalysis{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	var responseText string
	for _, block := range response.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	analysis, err := parseAnalysis(responseText)
	if err != nil {
		return models.ComplaintAnalysis{}, err
	}

	analysis.Provider = p.Name()
	analysis.Model = p.model
	return analysis, nil
}

var _ models.AIProvider = (*AnthropicProvider)(nil)
