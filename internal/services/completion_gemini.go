package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/tropicaldog17/stock-insight/internal/config"
)

type GeminiCompleter struct {
	client *genai.Client
}

func NewGeminiCompleter(ctx context.Context, cfg config.InsightConfig) (*GeminiCompleter, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return &GeminiCompleter{client: client}, nil
}

func (c *GeminiCompleter) Provider() string { return config.ProviderGemini }

func (c *GeminiCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	system, turns := splitSystem(req.Messages)

	contents := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := genai.Role(genai.RoleUser)
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, contents, genCfg)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part != nil {
					out.WriteString(part.Text)
				}
			}
			if out.Len() > 0 {
				break
			}
		}
	}
	return out.String(), nil
}
