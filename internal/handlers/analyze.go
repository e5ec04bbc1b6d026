package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/stock-insight/internal/errors"
	"github.com/tropicaldog17/stock-insight/internal/models"
	"github.com/tropicaldog17/stock-insight/internal/services"
)

const (
	msgInvalidBody   = "無效的請求內容"
	msgMissingFields = "缺少 symbol 或 stock_data"
)

type AnalyzeHandler struct {
	service  services.InsightService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAnalyzeHandler(service services.InsightService, logger *zap.Logger) *AnalyzeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &AnalyzeHandler{service: service, validate: v, logger: logger}
}

// HandleAnalyze handles POST /analyze
// @Summary Generate an investment insight
// @Description Writes a short Traditional-Chinese analyst summary from the supplied metrics
// @Tags insight
// @Accept json
// @Produce json
// @Param request body models.InsightRequest true "Symbol and metrics"
// @Success 200 {object} models.InsightResult
// @Failure 400 {object} ErrorResponse "Missing or unparseable body"
// @Failure 500 {object} ErrorResponse "Completion failed"
// @Failure 503 {object} ErrorResponse "No API key configured"
// @Router /analyze [post]
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	// credentials are checked before the body is read
	if err := h.service.Ready(); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req models.InsightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, &apperrors.ErrValidation{Field: "body", Message: msgInvalidBody})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		field := "body"
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field = verrs[0].Field()
		}
		writeError(w, h.logger, &apperrors.ErrValidation{Field: field, Message: msgMissingFields})
		return
	}

	result, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
