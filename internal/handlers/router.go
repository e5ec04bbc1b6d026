package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	_ "github.com/tropicaldog17/stock-insight/internal/docs"
	"github.com/tropicaldog17/stock-insight/internal/metrics"
	"github.com/tropicaldog17/stock-insight/internal/services"
)

const serviceName = "stock-insight"

// RouterConfig holds the collaborators of the HTTP layer.
type RouterConfig struct {
	Stock       services.StockService
	Insight     services.InsightService
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	CORSOrigins []string
}

// NewRouter mounts every route, each stock and analyze route both at the root
// and under /api.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	stockHandler := NewStockHandler(cfg.Stock, logger)
	analyzeHandler := NewAnalyzeHandler(cfg.Insight, logger)

	r := mux.NewRouter()
	r.Use(Instrument(cfg.Metrics))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": serviceName,
		})
	}).Methods(http.MethodGet)

	for _, prefix := range []string{"", "/api"} {
		r.HandleFunc(prefix+"/stock/{symbol}", stockHandler.HandleStock).Methods(http.MethodGet)
		// blank symbol, rejected by the service
		r.HandleFunc(prefix+"/stock/", stockHandler.HandleStock).Methods(http.MethodGet)
		r.HandleFunc(prefix+"/analyze", analyzeHandler.HandleAnalyze).Methods(http.MethodPost)
	}

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Detail: http.StatusText(http.StatusNotFound)})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Detail: http.StatusText(http.StatusMethodNotAllowed)})
	})

	return otelhttp.NewHandler(withMiddleware(r, logger, cfg.CORSOrigins), serviceName)
}

// withMiddleware wraps h, outermost first: request id, access log, panic
// recovery, CORS. A recovered panic is still access-logged as a 500.
func withMiddleware(h http.Handler, logger *zap.Logger, origins []string) http.Handler {
	h = CORS(origins)(h)
	h = Recover(logger)(h)
	h = AccessLog(logger)(h)
	return RequestID(h)
}
