// Package httpx provides the JSON envelope and request helpers shared by the API handlers.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrUnauthorized), errors.Is(err, shared.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, shared.ErrConflict):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// MessageFor returns the client facing message for err. Internal errors never
// leak their text.
func MessageFor(err error) string {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		return "Internal server error"
	}
	var se *shared.Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	switch status {
	case http.StatusBadRequest:
		return "Invalid request"
	case http.StatusUnauthorized:
		if errors.Is(err, shared.ErrInvalidCredentials) {
			return "Invalid email or password"
		}
		return "Authentication required"
	case http.StatusForbidden:
		return "Access denied"
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusConflict:
		return "Resource already exists"
	default:
		return http.StatusText(status)
	}
}

// Fail writes an error envelope whose status and message are derived from err.
func Fail(w http.ResponseWriter, err error) {
	Error(w, StatusFor(err), MessageFor(err))
}

// FailRequest logs backend failures with the request id before writing the
// error envelope. Client errors are not logged.
func FailRequest(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if StatusFor(err) >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err))
	}
	Fail(w, err)
}
