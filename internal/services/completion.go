package services

import (
	"context"
	"fmt"

	"github.com/tropicaldog17/stock-insight/internal/config"
)

// NewCompleter builds the completion client for the configured provider.
// It returns nil without error when no API key is set, so the service can
// start and report ConfigurationMissing per request.
func NewCompleter(ctx context.Context, cfg config.InsightConfig) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAICompleter(cfg), nil
	case config.ProviderClaude:
		return NewClaudeCompleter(cfg), nil
	case config.ProviderGemini:
		return NewGeminiCompleter(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported insight provider %q", cfg.Provider)
	}
}

// splitSystem separates the system instruction from the conversation turns.
// Multiple system messages are joined with a blank line.
func splitSystem(messages []Message) (string, []Message) {
	var system string
	turns := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		turns = append(turns, m)
	}
	return system, turns
}
