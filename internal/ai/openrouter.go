package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/nikhilraghav/complaintdesk/internal/config"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

// OpenRouterProvider implements models.AIProvider against the OpenRouter
// chat-completions API. The per-call deadline comes from the caller's
// context, not from the HTTP client.
type OpenRouterProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewOpenRouterProvider creates a new OpenRouterProvider.
func NewOpenRouterProvider(cfg config.OpenRouterConfig) *OpenRouterProvider {
	return &OpenRouterProvider{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{},
	}
}

func (p *OpenRouterProvider) Name() string { return "openrouter" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenRouterProvider) Analyze(ctx context.Context, req models.AnalysisRequest) (models.ComplaintAnalysis, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildComplaintText(req)},
		},
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		return models.ComplaintAnalysis{}, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return models.ComplaintAnalysis{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return models.ComplaintAnalysis{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ComplaintAnalysis{}, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return models.ComplaintAnalysis{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(chat.Choices) == 0 {
		return models.ComplaintAnalysis{}, fmt.Errorf("%w: empty choices", ErrInvalidResponse)
	}

	analysis, err := parseAnalysis(chat.Choices[0].Message.Content)
	if err != nil {
		return models.ComplaintAnalysis{}, err
	}

	analysis.Provider = p.Name()
	analysis.Model = p.model
	return analysis, nil
}

// classifyTransportError maps transport-level errors to sentinel errors.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
		}
	}

	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

var _ models.AIProvider = (*OpenRouterProvider)(nil)
