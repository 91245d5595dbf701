package ai

import (
	"fmt"

	"github.com/nikhilraghav/complaintdesk/internal/config"
	"github.com/nikhilraghav/complaintdesk/pkg/models"
)

// NewProvider creates the configured AI provider.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "openrouter":
		return NewOpenRouterProvider(cfg.OpenRouter), nil
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
