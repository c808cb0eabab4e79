package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/Allengabo/Yankicks-web/pkg/logger"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx answer. Message repeats Error
// for clients that read the message field.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Message: message,
		Code:    code,
	})
}

// handleDomainError maps a domain error kind to a status code. Connectivity
// and unknown failures are logged in full and answered generically.
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.Error
	kind := domain.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindUnauthorized:
		status = http.StatusUnauthorized
	case domain.KindConflict:
		// duplicate registration answers 400
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindPartialWrite:
		status = http.StatusInternalServerError
	case domain.KindConnectivity:
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("kind", kind.String()),
			zap.Error(err))
	}

	message := domain.UserMessage(err)
	body := ErrorResponse{Error: message, Message: message, Code: kind.String()}
	if errors.As(err, &derr) && len(derr.Fields) > 0 {
		body.Details = make(map[string]string, len(derr.Fields))
		for _, f := range derr.Fields {
			body.Details[f] = "invalid"
		}
	}
	respondJSON(w, status, body)
}
