package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/physiomath/go-physiomath/internal/logfields"
	"github.com/physiomath/go-physiomath/internal/metrics"
)

// chain applies request logging, metrics, and panic recovery around next.
func chain(logger *slog.Logger, rec metrics.Recorder, next http.Handler) http.Handler {
	return loggingMiddleware(logger, rec, recoveryMiddleware(logger, next))
}

// loggingMiddleware logs and times every request by route pattern.
func loggingMiddleware(logger *slog.Logger, rec metrics.Recorder, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		rec.ObserveHTTP(route, wrapped.statusCode, duration)
		logger.Debug("http request",
			logfields.Method(r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(wrapped.statusCode),
			logfields.Duration(duration))
	})
}

// recoveryMiddleware turns a handler panic into a 500.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("http handler panic",
					slog.Any("panic", err),
					logfields.Method(r.Method),
					logfields.Path(r.URL.Path))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
