package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/stock-insight/internal/errors"
	"github.com/tropicaldog17/stock-insight/internal/metrics"
	"github.com/tropicaldog17/stock-insight/internal/models"
)

type stockService struct {
	upstream UpstreamClient
	deadline time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewStockService creates a lookup service. deadline bounds the whole lookup,
// retries included; zero disables it.
func NewStockService(upstream UpstreamClient, deadline time.Duration, logger *zap.Logger, m *metrics.Metrics) StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &stockService{upstream: upstream, deadline: deadline, logger: logger, metrics: m}
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (s *stockService) GetStock(ctx context.Context, symbol string) (*models.StockRecord, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, apperrors.InvalidInput("請輸入股票代碼")
	}

	ctx, span := otel.Tracer("stock-insight/services").Start(ctx, "lookup")
	span.SetAttributes(attribute.String("symbol", symbol))
	defer span.End()

	if s.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	raw, err := s.upstream.FetchSymbol(ctx, symbol)
	if err != nil {
		s.fail(span, symbol, err)
		return nil, err
	}
	bars, err := NormalizeTimeSeries(raw.TimeSeries)
	if err != nil {
		s.fail(span, symbol, err)
		return nil, err
	}
	fundamentals := NormalizeFundamentals(raw.Fundamentals, symbol)

	record := AssembleStockRecord(symbol, fundamentals, bars)
	span.SetAttributes(attribute.Int("bars", len(record.History)))
	s.metrics.ObserveLookup("ok")
	s.logger.Info("stock lookup completed",
		zap.String("symbol", symbol),
		zap.Int("bars", len(record.History)),
		zap.Float64("current_price", record.Price()),
	)
	if ce := s.logger.Check(zap.DebugLevel, "insight brief"); ce != nil {
		ce.Write(zap.String("symbol", symbol), zap.String("brief", BuildInsightBrief(symbol, models.MetricsFromRecord(record))))
	}
	return &record, nil
}

func (s *stockService) fail(span trace.Span, symbol string, err error) {
	kind := apperrors.KindOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, string(kind))
	s.metrics.ObserveLookup(string(kind))
	s.logger.Error("stock lookup failed",
		zap.String("symbol", symbol),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
}
