package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tropicaldog17/stock-insight/internal/config"
	apperrors "github.com/tropicaldog17/stock-insight/internal/errors"
	"github.com/tropicaldog17/stock-insight/internal/metrics"
	"github.com/tropicaldog17/stock-insight/internal/models"
)

type insightService struct {
	cfg       config.InsightConfig
	completer Completer
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewInsightService creates the insight flow. completer may be nil when no
// credential is configured; Analyze then fails with ConfigurationMissing.
func NewInsightService(cfg config.InsightConfig, completer Completer, logger *zap.Logger, m *metrics.Metrics) InsightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &insightService{cfg: cfg, completer: completer, logger: logger, metrics: m}
}

func (s *insightService) Ready() error {
	if s.cfg.APIKey == "" || s.completer == nil {
		return apperrors.ConfigurationMissing("未設定 %s，請在 .env 中設定後重啟服務", config.APIKeyEnv(s.cfg.Provider))
	}
	return nil
}

func (s *insightService) Analyze(ctx context.Context, req models.InsightRequest) (*models.InsightResult, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}
	if req.StockData == nil {
		return nil, &apperrors.ErrValidation{Field: "stock_data", Message: "is required"}
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.completer.Complete(ctx, CompletionRequest{
		Messages:    BuildInsightMessages(req.Symbol, *req.StockData),
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.SamplingTemperature(),
	})
	fields := []zap.Field{
		zap.String("symbol", req.Symbol),
		zap.String("provider", s.completer.Provider()),
		zap.String("model", s.cfg.Model),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		s.metrics.ObserveInsight(s.completer.Provider(), "error")
		s.logger.Error("insight completion failed", append(fields, zap.Error(err))...)
		return nil, apperrors.CompletionFailed(err)
	}

	summary := strings.TrimSpace(text)
	s.metrics.ObserveInsight(s.completer.Provider(), "ok")
	s.logger.Info("insight completion succeeded", append(fields, zap.Int("summary_length", len(summary)))...)
	return &models.InsightResult{Symbol: req.Symbol, Summary: summary}, nil
}
