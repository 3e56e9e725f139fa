package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"redactor/internal/export"
	"redactor/internal/history"
	"redactor/internal/logging"
	"redactor/internal/plan"
	"redactor/internal/redaction"
	"redactor/internal/services"
	"redactor/internal/session"
)

const maxBodyBytes = 1 << 20

// RequestIDMiddleware tags every request with a short id, echoed in the
// X-Request-ID header and carried on the request context.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()[:8]
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), requestID)))
		})
	}
}

// AuthMiddleware validates bearer tokens. An empty token disables
// authentication.
func AuthMiddleware(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	token = strings.TrimSpace(token)
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				WriteError(w, http.StatusUnauthorized, "missing bearer token", "UNAUTHORIZED")
				return
			}
			if subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(auth, "Bearer ")), []byte(token)) != 1 {
				logging.WithContext(r.Context(), logger).Warn("rejected api token", logging.String("path", r.URL.Path))
				WriteError(w, http.StatusUnauthorized, "invalid token", "UNAUTHORIZED")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs one line per request at debug level, or warn for
// server errors.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			level := slog.LevelDebug
			if wrapped.status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logging.WithContext(r.Context(), logger).Log(r.Context(), level, "http request",
				logging.Args(
					logging.String("method", r.Method),
					logging.String("path", r.URL.Path),
					logging.Int("status", wrapped.status),
					logging.Int64("duration_ms", time.Since(start).Milliseconds()),
				)...,
			)
		})
	}
}

// RecoveryMiddleware converts handler panics into 500 responses.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logging.ErrorWithContext(logging.WithContext(r.Context(), logger), "panic recovered", "api_panic",
						logging.String("panic", fmt.Sprint(rec)),
						logging.String("path", r.URL.Path),
					)
					WriteError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// WriteError writes an ErrorResponse.
func WriteError(w http.ResponseWriter, status int, message, code string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// WriteJSON writes data as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	WriteError(w, status, err.Error(), code)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrRedactionNotFound),
		errors.Is(err, session.ErrAnnotationNotFound),
		errors.Is(err, session.ErrNoDraft),
		errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, session.ErrExportInFlight),
		errors.Is(err, export.ErrWorkspaceBusy),
		errors.Is(err, session.ErrInvalidTransition):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, session.ErrNoVideo):
		return http.StatusConflict, "NO_VIDEO"
	case errors.Is(err, export.ErrNoRedactions):
		return http.StatusConflict, "NO_REDACTIONS"
	case errors.Is(err, redaction.ErrInvalid),
		errors.Is(err, plan.ErrInvalidPlan):
		return http.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, session.ErrLoopStopped):
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	}
	switch services.Kind(err) {
	case "validation":
		return http.StatusBadRequest, "BAD_REQUEST"
	case "not_found":
		return http.StatusNotFound, "NOT_FOUND"
	case "conflict":
		return http.StatusConflict, "CONFLICT"
	case "timeout":
		return http.StatusGatewayTimeout, "TIMEOUT"
	case "external_tool":
		return http.StatusBadGateway, "EXTERNAL_TOOL"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// decodeJSON reads a bounded JSON body, rejecting unknown fields. An empty
// body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "BAD_REQUEST")
		return false
	}
	return true
}
