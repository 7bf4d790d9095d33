package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/boddenberg/leads-crm-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

// viewResponse is the rendered page plus the error of the transition, if any.
type viewResponse struct {
	domain.Page
	Error string `json:"error,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusFor maps domain errors to HTTP status codes and logs them.
func statusFor(err error, logger *zap.Logger) int {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var validation *domain.ErrValidation
	var busy *domain.ErrBusy
	var unauthorized *domain.ErrUnauthorized
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		return http.StatusNotFound
	case errors.As(err, &busy):
		logger.Debug("operation in progress", zap.String("operation", busy.Operation))
		return http.StatusConflict
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		return http.StatusServiceUnavailable
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		return http.StatusUnauthorized
	case errors.As(err, &external):
		logger.Error("collaborator error", zap.Error(err))
		return http.StatusBadGateway
	default:
		logger.Error("unhandled error", zap.Error(err))
		return http.StatusInternalServerError
	}
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	status := statusFor(err, logger)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeError(w, status, msg)
}
