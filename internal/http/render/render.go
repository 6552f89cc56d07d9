// Package render writes JSON bodies and maps service errors to status codes.
package render

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Detail writes {"detail": msg} with status.
func Detail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, api.ErrorResponse{Detail: msg})
}

// Error maps err onto a status code. Unknown errors are logged and reported
// as a generic 500 so internals do not leak to clients.
func Error(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		Detail(w, status, "internal error")

		return
	}

	Detail(w, status, err.Error())
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, record.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, record.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, record.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, record.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
