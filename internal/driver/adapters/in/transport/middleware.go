package transport

import (
	"context"
	"net/http"
	"time"

	"bustracker/internal/shared/logger"
	"bustracker/internal/shared/utils"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// RequestIDMiddleware проставляет request_id в контекст и заголовок ответа
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = utils.NewUUID()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, reqID)))
	})
}

// RequestIDFromContext достает request_id, если он есть
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// LoggingMiddleware логирует каждый запрос
func LoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug(logger.Entry{
				Action:    "http_request",
				Message:   r.Method + " " + r.URL.Path,
				RequestID: RequestIDFromContext(r.Context()),
				Additional: map[string]any{
					"duration_ms": time.Since(start).Milliseconds(),
				},
			})
		})
	}
}
