package services

import (
	"context"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tropicaldog17/stock-insight/internal/config"
)

// OpenAICompleter speaks the chat-completions API. BaseURL allows any
// compatible endpoint.
type OpenAICompleter struct {
	client *openai.Client
}

func NewOpenAICompleter(cfg config.InsightConfig) *OpenAICompleter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAICompleter{client: openai.NewClientWithConfig(clientCfg)}
}

func (c *OpenAICompleter) Provider() string { return config.ProviderOpenAI }

func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case "system":
			role = openai.ChatMessageRoleSystem
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	// temperature is omitempty in the request; a zero would fall back to the API default of 1
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
