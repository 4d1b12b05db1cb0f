package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// contextKey is a private type for request context values.
type contextKey string

const companyIDKey contextKey = "companyID"

// companyIDFrom returns the authenticated company id injected by requireAuth.
func companyIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(companyIDKey).(int64)
	return id
}

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs each HTTP request with method, path, status, and duration.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error,
// and returns a 500 response.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					"panic", v,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requireAuth admits only fully authenticated sessions: a correctly signed
// cookie, a live session row, the OTP marker set, and the expiry in the
// future. Everything else is 401 before any business handler runs. The
// company id is injected into the request context for ownership scoping
// downstream.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.sessions.Current(r.Context(), r)
		if err != nil {
			h.logger.Error("failed to load session", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if s == nil || !s.Authenticated(time.Now().UTC()) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), companyIDKey, s.CompanyID)
		next(w, r.WithContext(ctx))
	}
}
