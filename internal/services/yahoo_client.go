package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tropicaldog17/stock-insight/internal/config"
	apperrors "github.com/tropicaldog17/stock-insight/internal/errors"
	"github.com/tropicaldog17/stock-insight/internal/metrics"
)

const (
	endpointChart   = "chart"
	endpointSummary = "summary"
)

// BrowserHeaders are sent on every upstream request; Yahoo rejects bare clients.
var BrowserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Accept":     "application/json",
	"Referer":    "https://finance.yahoo.com/",
}

// YahooClient implements UpstreamClient against the Yahoo Finance chart and
// quoteSummary endpoints.
type YahooClient struct {
	chartBaseURL   string
	summaryBaseURL string
	rangeParam     string
	interval       string
	modules        []string

	httpClient     *http.Client
	limiter        *rate.Limiter
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// YahooOption configures the YahooClient.
type YahooOption func(*YahooClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) YahooOption {
	return func(c *YahooClient) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *zap.Logger) YahooOption {
	return func(c *YahooClient) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) YahooOption {
	return func(c *YahooClient) {
		c.metrics = m
	}
}

// NewYahooClient creates a client with a session cookie jar, optional proxy
// and a traced transport.
func NewYahooClient(cfg config.UpstreamConfig, opts ...YahooOption) (*YahooClient, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		u, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}

	c := &YahooClient{
		chartBaseURL:   strings.TrimRight(cfg.ChartBaseURL, "/"),
		summaryBaseURL: strings.TrimRight(cfg.SummaryBaseURL, "/"),
		rangeParam:     cfg.Range,
		interval:       cfg.Interval,
		modules:        cfg.Modules,
		httpClient: &http.Client{
			Jar:       jar,
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         zap.NewNop(),
	}
	if cfg.RateLimit > 0 {
		// burst covers the two requests of one lookup
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(int(cfg.RateLimit), 2))
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	return c, nil
}

func (c *YahooClient) chartURL(symbol string) string {
	q := url.Values{}
	q.Set("range", c.rangeParam)
	q.Set("interval", c.interval)
	q.Set("includeTimestamps", "true")
	return fmt.Sprintf("%s/%s?%s", c.chartBaseURL, url.PathEscape(symbol), q.Encode())
}

func (c *YahooClient) summaryURL(symbol string) string {
	q := url.Values{}
	q.Set("modules", strings.Join(c.modules, ","))
	return fmt.Sprintf("%s/%s?%s", c.summaryBaseURL, url.PathEscape(symbol), q.Encode())
}

// FetchSymbol issues the chart and fundamentals requests concurrently. Either
// failing fails the whole fetch and cancels the other request. With a limiter
// configured, both tokens are reserved up front.
func (c *YahooClient) FetchSymbol(ctx context.Context, symbol string) (*RawPayloads, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitN(ctx, 2); err != nil {
			return nil, apperrors.UpstreamUnavailable(err, "rate limit for %s", symbol)
		}
	}

	var out RawPayloads
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := c.get(gctx, endpointChart, symbol, c.chartURL(symbol))
		out.TimeSeries = body
		return err
	})
	g.Go(func() error {
		body, err := c.get(gctx, endpointSummary, symbol, c.summaryURL(symbol))
		out.Fundamentals = body
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// get performs one GET with bounded exponential-backoff retry. Transport
// errors, 429 and 5xx are retried; any other status with a JSON body is
// returned as-is for the normalizers to interpret.
func (c *YahooClient) get(ctx context.Context, endpoint, symbol, rawURL string) ([]byte, error) {
	var (
		body    []byte
		attempt int
	)
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		for k, v := range BrowserHeaders {
			req.Header.Set(k, v)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		latency := time.Since(start)
		fields := []zap.Field{
			zap.String("endpoint", endpoint),
			zap.String("symbol", symbol),
			zap.Int("attempt", attempt),
			zap.Duration("latency", latency),
		}
		if err != nil {
			c.metrics.ObserveUpstream(endpoint, "error", latency.Seconds())
			c.logger.Warn("upstream request failed", append(fields, zap.Error(err))...)
			return fmt.Errorf("failed to fetch %s: %w", endpoint, err)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			c.metrics.ObserveUpstream(endpoint, "error", latency.Seconds())
			return fmt.Errorf("failed to read %s body: %w", endpoint, err)
		}
		fields = append(fields, zap.Int("status", resp.StatusCode))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			c.metrics.ObserveUpstream(endpoint, "retryable_status", latency.Seconds())
			c.logger.Warn("upstream returned retryable status", fields...)
			return fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
		}
		if !json.Valid(b) {
			c.metrics.ObserveUpstream(endpoint, "invalid_body", latency.Seconds())
			c.logger.Warn("upstream returned non-JSON body", fields...)
			return backoff.Permanent(fmt.Errorf("%s returned a non-JSON body (status %d)", endpoint, resp.StatusCode))
		}

		c.metrics.ObserveUpstream(endpoint, "ok", latency.Seconds())
		c.logger.Debug("upstream request", fields...)
		body = b
		return nil
	}

	if err := backoff.Retry(op, c.retryPolicy(ctx)); err != nil {
		return nil, apperrors.UpstreamUnavailable(err, "%s request for %s failed", endpoint, symbol)
	}
	return body, nil
}

func (c *YahooClient) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = c.maxBackoff
	// the caller's context deadline bounds total time
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxAttempts-1)), ctx)
}
