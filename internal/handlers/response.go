package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/tropicaldog17/stock-insight/internal/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to its status code. Internal errors are logged and
// reported without their cause.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	kind := apperrors.KindOf(err)
	status := apperrors.HTTPStatus(kind)

	detail := err.Error()
	var ve *apperrors.ErrValidation
	if stderrors.As(err, &ve) {
		detail = ve.Message
	}
	if kind == apperrors.KindInternal {
		logger.Error("unhandled error", zap.Error(err))
		detail = http.StatusText(http.StatusInternalServerError)
	}
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
