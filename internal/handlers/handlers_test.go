package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tropicaldog17/stock-insight/internal/config"
	apperrors "github.com/tropicaldog17/stock-insight/internal/errors"
	"github.com/tropicaldog17/stock-insight/internal/metrics"
	"github.com/tropicaldog17/stock-insight/internal/models"
	"github.com/tropicaldog17/stock-insight/internal/services"
)

type fakeUpstream struct {
	calls int
	raw   *services.RawPayloads
	err   error
}

func (f *fakeUpstream) FetchSymbol(_ context.Context, _ string) (*services.RawPayloads, error) {
	f.calls++
	return f.raw, f.err
}

type fakeCompleter struct {
	calls int
	text  string
	err   error
}

func (f *fakeCompleter) Provider() string { return "fake" }

func (f *fakeCompleter) Complete(_ context.Context, _ services.CompletionRequest) (string, error) {
	f.calls++
	return f.text, f.err
}

var _ services.UpstreamClient = (*fakeUpstream)(nil)
var _ services.Completer = (*fakeCompleter)(nil)

const chartBody = `{"chart":{"result":[{"timestamp":[1704205800,1704292200],
	"indicators":{"quote":[{"open":[100,101],"high":[102,103],"low":[99,100],"close":[100.5,101.2],"volume":[1000,2000]}]}}]}}`

type testServer struct {
	handler   http.Handler
	upstream  *fakeUpstream
	completer *fakeCompleter
}

func newTestServer(t *testing.T, apiKey string) *testServer {
	t.Helper()
	up := &fakeUpstream{raw: &services.RawPayloads{TimeSeries: []byte(chartBody), Fundamentals: []byte(`{}`)}}
	comp := &fakeCompleter{text: "基本面穩健"}
	m := metrics.New()
	insightCfg := config.InsightConfig{Provider: config.ProviderOpenAI, APIKey: apiKey, Model: "gpt-4o-mini", MaxTokens: 400}
	h := NewRouter(RouterConfig{
		Stock:       services.NewStockService(up, 0, nil, m),
		Insight:     services.NewInsightService(insightCfg, comp, nil, m),
		Metrics:     m,
		CORSOrigins: []string{"*"},
	})
	return &testServer{handler: h, upstream: up, completer: comp}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rw := httptest.NewRecorder()
	s.handler.ServeHTTP(rw, req)
	return rw
}

func decodeDetail(t *testing.T, rw *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body), rw.Body.String())
	return body.Detail
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "")
	rw := s.do(http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"stock-insight"}`, rw.Body.String())
	assert.NotEmpty(t, rw.Header().Get(RequestIDHeader))
}

func TestGetStock(t *testing.T) {
	for _, path := range []string{"/stock/aapl", "/api/stock/AAPL"} {
		t.Run(path, func(t *testing.T) {
			s := newTestServer(t, "")
			rw := s.do(http.MethodGet, path, "")
			require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())

			var body map[string]any
			require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
			assert.Equal(t, "AAPL", body["symbol"])
			assert.Equal(t, "AAPL", body["name"])
			assert.Equal(t, 101.2, body["current_price"])
			assert.Nil(t, body["pe_ratio"])
			assert.Equal(t, "N/A", body["recommendation"])

			history := body["history"].([]any)
			require.Len(t, history, 2)
			first := history[0].(map[string]any)
			assert.Equal(t, "2024-01-02", first["date"])
			assert.EqualValues(t, 1000, first["volume"])
			assert.Equal(t, 1, s.upstream.calls)
		})
	}
}

func TestGetStock_BlankSymbol(t *testing.T) {
	for _, path := range []string{"/stock/", "/stock/%20%20", "/api/stock/"} {
		t.Run(path, func(t *testing.T) {
			s := newTestServer(t, "")
			rw := s.do(http.MethodGet, path, "")

			assert.Equal(t, http.StatusBadRequest, rw.Code)
			assert.NotEmpty(t, decodeDetail(t, rw))
			assert.Zero(t, s.upstream.calls, "no outbound request")
		})
	}
}

func TestGetStock_UpstreamFailure(t *testing.T) {
	s := newTestServer(t, "")
	s.upstream.err = apperrors.UpstreamUnavailable(errors.New("dial tcp: i/o timeout"), "chart request for AAPL failed")

	rw := s.do(http.MethodGet, "/stock/AAPL", "")
	assert.Equal(t, http.StatusInternalServerError, rw.Code)
	assert.Contains(t, decodeDetail(t, rw), "i/o timeout")
}

func TestGetStock_Malformed(t *testing.T) {
	s := newTestServer(t, "")
	s.upstream.raw = &services.RawPayloads{TimeSeries: []byte(`{"chart":{"result":null}}`), Fundamentals: []byte(`{}`)}

	rw := s.do(http.MethodGet, "/stock/AAPL", "")
	assert.Equal(t, http.StatusInternalServerError, rw.Code)
	assert.Contains(t, decodeDetail(t, rw), "chart data not found")
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(t, "sk-test")
	body := `{"symbol":"AAPL","stock_data":{"name":"Apple Inc.","current_price":189.99,"pe_ratio":null,"recommendation":"buy"}}`

	rw := s.do(http.MethodPost, "/api/analyze", body)
	require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())

	var res models.InsightResult
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &res))
	assert.Equal(t, "AAPL", res.Symbol)
	assert.Equal(t, "基本面穩健", res.Summary)
	assert.Equal(t, 1, s.completer.calls)
}

func TestAnalyze_BadRequest(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		detail string
	}{
		{"missing stock_data", `{"symbol":"AAPL"}`, msgMissingFields},
		{"missing symbol", `{"stock_data":{}}`, msgMissingFields},
		{"null stock_data", `{"symbol":"AAPL","stock_data":null}`, msgMissingFields},
		{"empty body", ``, msgInvalidBody},
		{"not json", `symbol=AAPL`, msgInvalidBody},
		{"wrong type", `{"symbol":"AAPL","stock_data":"oops"}`, msgInvalidBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, "sk-test")
			req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(tt.body))
			rw := httptest.NewRecorder()
			s.handler.ServeHTTP(rw, req)

			assert.Equal(t, http.StatusBadRequest, rw.Code)
			assert.Equal(t, tt.detail, decodeDetail(t, rw))
			assert.Zero(t, s.completer.calls, "completion never invoked")
		})
	}
}

func TestAnalyze_NotConfigured(t *testing.T) {
	s := newTestServer(t, "")
	rw := s.do(http.MethodPost, "/analyze", `{"symbol":"AAPL","stock_data":{}}`)

	assert.Equal(t, http.StatusServiceUnavailable, rw.Code)
	assert.Contains(t, decodeDetail(t, rw), "OPENAI_API_KEY")
	assert.Zero(t, s.completer.calls)
}

func TestAnalyze_CompletionFailed(t *testing.T) {
	s := newTestServer(t, "sk-test")
	s.completer.err = errors.New("You exceeded your current quota")

	rw := s.do(http.MethodPost, "/analyze", `{"symbol":"AAPL","stock_data":{"name":"Apple"}}`)
	assert.Equal(t, http.StatusInternalServerError, rw.Code)
	assert.Equal(t, "You exceeded your current quota", decodeDetail(t, rw))
}

func TestRouting(t *testing.T) {
	s := newTestServer(t, "")

	rw := s.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rw.Code)

	rw = s.do(http.MethodGet, "/analyze", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rw.Code)

	rw = s.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rw.Code)

	rw = s.do(http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), "/stock/{symbol}")
}

func TestRouting_MetricsRecordRouteTemplate(t *testing.T) {
	s := newTestServer(t, "")
	s.do(http.MethodGet, "/stock/MSFT", "")

	rw := s.do(http.MethodGet, "/metrics", "")
	assert.Contains(t, rw.Body.String(), `http_requests_total{method="GET",route="/stock/{symbol}",status="200"} 1`)
	assert.Contains(t, rw.Body.String(), `stock_lookups_total{outcome="ok"} 1`)
}
