package services

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tropicaldog17/stock-insight/internal/config"
)

type ClaudeCompleter struct {
	client anthropic.Client
}

func NewClaudeCompleter(cfg config.InsightConfig, opts ...option.RequestOption) *ClaudeCompleter {
	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)
	return &ClaudeCompleter{client: anthropic.NewClient(reqOpts...)}
}

func (c *ClaudeCompleter) Provider() string { return config.ProviderClaude }

func (c *ClaudeCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	system, turns := splitSystem(req.Messages)

	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, m := range turns {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}
