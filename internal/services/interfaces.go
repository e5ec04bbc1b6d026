package services

import (
	"context"

	"github.com/tropicaldog17/stock-insight/internal/models"
)

// RawPayloads holds the two upstream bodies for one symbol. Both are valid JSON.
type RawPayloads struct {
	TimeSeries   []byte
	Fundamentals []byte
}

// UpstreamClient fetches the raw chart and fundamentals payloads for a symbol.
// The symbol must already be trimmed and upper-cased.
type UpstreamClient interface {
	FetchSymbol(ctx context.Context, symbol string) (*RawPayloads, error)
}

// StockService resolves a symbol into an assembled record.
type StockService interface {
	GetStock(ctx context.Context, symbol string) (*models.StockRecord, error)
}

// InsightService turns record metrics into a generated summary.
type InsightService interface {
	// Ready fails with ConfigurationMissing when no credential is configured.
	Ready() error
	Analyze(ctx context.Context, req models.InsightRequest) (*models.InsightResult, error)
}

// Message is one role-tagged entry of a completion prompt.
type Message struct {
	// Role is "system", "user" or "assistant"
	Role    string
	Content string
}

// CompletionRequest is a provider-agnostic text completion request.
type CompletionRequest struct {
	Messages    []Message
	Model       string
	MaxTokens   int
	Temperature float32
}

// Completer is the text-completion collaborator.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Provider() string
}
