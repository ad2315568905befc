package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"avatarium/internal/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, statusCode int, message string, code apperr.Kind) {
	respondJSON(w, statusCode, errorResponse{Error: message, Code: string(code)})
}

// writeError maps a domain error to an HTTP status. Internal failures are
// masked behind a generic message; everything else surfaces its own.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		respondError(w, http.StatusInternalServerError, "Internal server error", apperr.KindInternal)
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindAuthentication, apperr.KindInvalidToken:
		status = http.StatusUnauthorized
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	}

	message := appErr.Message
	if appErr.Kind == apperr.KindInternal {
		message = "Internal server error"
	}

	respondError(w, status, message, appErr.Kind)
}
