package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tropicaldog17/stock-insight/internal/services"
)

type StockHandler struct {
	service services.StockService
	logger  *zap.Logger
}

func NewStockHandler(service services.StockService, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{service: service, logger: logger}
}

// HandleStock handles GET /stock/{symbol}
// @Summary Look up a stock
// @Description One year of daily bars plus current fundamentals for a ticker
// @Tags stock
// @Produce json
// @Param symbol path string true "Ticker symbol, case-insensitive"
// @Success 200 {object} models.StockRecord
// @Failure 400 {object} ErrorResponse "Blank symbol"
// @Failure 500 {object} ErrorResponse "Upstream unavailable or malformed"
// @Router /stock/{symbol} [get]
func (h *StockHandler) HandleStock(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	record, err := h.service.GetStock(r.Context(), symbol)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}
