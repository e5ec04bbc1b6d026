package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tropicaldog17/stock-insight/internal/config"
	apperrors "github.com/tropicaldog17/stock-insight/internal/errors"
)

type fakeYahoo struct {
	server      *httptest.Server
	chartHits   atomic.Int32
	summaryHits atomic.Int32
}

func newFakeYahoo(t *testing.T, chart, summary http.HandlerFunc) *fakeYahoo {
	t.Helper()
	f := &fakeYahoo{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
		f.chartHits.Add(1)
		chart(w, r)
	})
	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		f.summaryHits.Add(1)
		summary(w, r)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newTestYahooClient(t *testing.T, f *fakeYahoo) *YahooClient {
	t.Helper()
	return newLimitedYahooClient(t, f, 0)
}

func newLimitedYahooClient(t *testing.T, f *fakeYahoo, rateLimit float64) *YahooClient {
	t.Helper()
	c, err := NewYahooClient(config.UpstreamConfig{
		ChartBaseURL:   f.server.URL + "/v8/finance/chart",
		SummaryBaseURL: f.server.URL + "/v10/finance/quoteSummary",
		Range:          "1y",
		Interval:       "1d",
		Modules:        []string{"defaultKeyStatistics", "financialData", "summaryDetail", "assetProfile"},
		Timeout:        2 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		RateLimit:      rateLimit,
	}, WithHTTPClient(f.server.Client()))
	require.NoError(t, err)
	return c
}

func TestYahooClient_FetchSymbol(t *testing.T) {
	var chartSeen, summarySeen atomic.Pointer[http.Request]
	f := newFakeYahoo(t,
		func(w http.ResponseWriter, r *http.Request) {
			chartSeen.Store(r.Clone(context.Background()))
			respond(http.StatusOK, sampleChart)(w, r)
		},
		func(w http.ResponseWriter, r *http.Request) {
			summarySeen.Store(r.Clone(context.Background()))
			respond(http.StatusOK, sampleSummary)(w, r)
		},
	)
	c := newTestYahooClient(t, f)

	raw, err := c.FetchSymbol(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.JSONEq(t, sampleChart, string(raw.TimeSeries))
	assert.JSONEq(t, sampleSummary, string(raw.Fundamentals))

	chartReq, summaryReq := chartSeen.Load(), summarySeen.Load()
	require.NotNil(t, chartReq)
	assert.Equal(t, "/v8/finance/chart/AAPL", chartReq.URL.Path)
	assert.Equal(t, "1y", chartReq.URL.Query().Get("range"))
	assert.Equal(t, "1d", chartReq.URL.Query().Get("interval"))
	assert.Equal(t, "true", chartReq.URL.Query().Get("includeTimestamps"))

	require.NotNil(t, summaryReq)
	assert.Equal(t, "/v10/finance/quoteSummary/AAPL", summaryReq.URL.Path)
	assert.Equal(t, "defaultKeyStatistics,financialData,summaryDetail,assetProfile", summaryReq.URL.Query().Get("modules"))

	for _, r := range []*http.Request{chartReq, summaryReq} {
		for k, v := range BrowserHeaders {
			assert.Equal(t, v, r.Header.Get(k), k)
		}
	}
}

func TestYahooClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	f := newFakeYahoo(t,
		func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				respond(http.StatusBadGateway, `{}`)(w, r)
				return
			}
			respond(http.StatusOK, sampleChart)(w, r)
		},
		respond(http.StatusOK, sampleSummary),
	)
	c := newTestYahooClient(t, f)

	raw, err := c.FetchSymbol(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.TimeSeries)
	assert.Equal(t, int32(3), f.chartHits.Load())
}

func TestYahooClient_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFakeYahoo(t,
		respond(http.StatusTooManyRequests, `{"finance":{"error":"rate limited"}}`),
		respond(http.StatusOK, sampleSummary),
	)
	c := newTestYahooClient(t, f)

	_, err := c.FetchSymbol(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamUnavailable, apperrors.KindOf(err))
	assert.Equal(t, int32(3), f.chartHits.Load())
}

func TestYahooClient_NonJSONBodyIsNotRetried(t *testing.T) {
	f := newFakeYahoo(t,
		respond(http.StatusOK, sampleChart),
		func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>consent required</html>"))
		},
	)
	c := newTestYahooClient(t, f)

	_, err := c.FetchSymbol(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamUnavailable, apperrors.KindOf(err))
	assert.True(t, strings.Contains(err.Error(), "non-JSON"), err.Error())
	assert.Equal(t, int32(1), f.summaryHits.Load())
}

func TestYahooClient_ClientErrorWithJSONPassesThrough(t *testing.T) {
	notFound := `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`
	f := newFakeYahoo(t,
		respond(http.StatusNotFound, notFound),
		respond(http.StatusNotFound, `{"quoteSummary":{"result":null,"error":{"code":"Not Found"}}}`),
	)
	c := newTestYahooClient(t, f)

	raw, err := c.FetchSymbol(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.JSONEq(t, notFound, string(raw.TimeSeries))
	assert.Equal(t, int32(1), f.chartHits.Load())
}

func TestYahooClient_ContextCancelled(t *testing.T) {
	f := newFakeYahoo(t, respond(http.StatusOK, sampleChart), respond(http.StatusOK, sampleSummary))
	c := newTestYahooClient(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchSymbol(ctx, "AAPL")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstreamUnavailable, apperrors.KindOf(err))
}

func fetchConcurrently(t *testing.T, c *YahooClient, n int, deadline time.Duration) []error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.FetchSymbol(ctx, "AAPL")
		}(i)
	}
	wg.Wait()
	return errs
}

func TestYahooClient_ConcurrentLookupsUnlimited(t *testing.T) {
	f := newFakeYahoo(t, respond(http.StatusOK, sampleChart), respond(http.StatusOK, sampleSummary))
	c := newTestYahooClient(t, f)
	require.Nil(t, c.limiter, "rate_limit 0 disables the limiter")

	for i, err := range fetchConcurrently(t, c, 20, 2*time.Second) {
		assert.NoError(t, err, "lookup %d", i)
	}
	assert.Equal(t, int32(20), f.chartHits.Load())
	assert.Equal(t, int32(20), f.summaryHits.Load())
}

func TestYahooClient_ConcurrentLookupsWithinRateLimit(t *testing.T) {
	f := newFakeYahoo(t, respond(http.StatusOK, sampleChart), respond(http.StatusOK, sampleSummary))
	// 40 requests at 20/s with a burst of 20 need about a second
	c := newLimitedYahooClient(t, f, 20)

	for i, err := range fetchConcurrently(t, c, 20, 3*time.Second) {
		assert.NoError(t, err, "lookup %d", i)
	}
	assert.Equal(t, int32(20), f.chartHits.Load())
	assert.Equal(t, int32(20), f.summaryHits.Load())
}

func TestYahooClient_RateLimitExceedsDeadline(t *testing.T) {
	f := newFakeYahoo(t, respond(http.StatusOK, sampleChart), respond(http.StatusOK, sampleSummary))
	c := newLimitedYahooClient(t, f, 1)

	errs := fetchConcurrently(t, c, 3, 200*time.Millisecond)
	var failed int
	for _, err := range errs {
		if err != nil {
			failed++
			assert.Equal(t, apperrors.KindUpstreamUnavailable, apperrors.KindOf(err))
		}
	}
	assert.Equal(t, 2, failed, "only the first lookup fits in the burst")
	assert.Equal(t, f.chartHits.Load(), f.summaryHits.Load(), "tokens are reserved per lookup, never per request")
}
