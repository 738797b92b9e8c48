package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"duck/internal/errors"
	"duck/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type responseWriter struct {
    http.ResponseWriter
    status int
}

func (w *responseWriter) WriteHeader(status int) {
    w.status = status
    w.ResponseWriter.WriteHeader(status)
}

type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the first middleware listed runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
    for i := len(middlewares) - 1; i >= 0; i-- {
        h = middlewares[i](h)
    }
    return h
}

func RequestID(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        requestID := r.Header.Get("X-Request-ID")
        if requestID == "" {
            requestID = uuid.New().String()
        }
        ctx := context.WithValue(r.Context(), logging.RequestIDKey, requestID)
        w.Header().Set("X-Request-ID", requestID)
        next.ServeHTTP(w, r.WithContext(ctx))
    })
}

func Logger(logger *logging.Logger) Middleware {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            start := time.Now()

            // Create response wrapper to capture status code
            wrapper := &responseWriter{ResponseWriter: w, status: http.StatusOK}

            next.ServeHTTP(wrapper, r)

            logger.WithRequestID(r.Context()).Info("request completed",
                zap.String("method", r.Method),
                zap.String("path", r.URL.Path),
                zap.Int("status", wrapper.status),
                zap.Duration("duration", time.Since(start)),
            )
        })
    }
}

func Recover(logger *logging.Logger) Middleware {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            defer func() {
                if err := recover(); err != nil {
                    logger.WithRequestID(r.Context()).Error("panic recovered",
                        zap.Any("error", err),
                    )
                    apiErr := errors.Internal("internal server error")
                    w.Header().Set("Content-Type", "application/json")
                    w.WriteHeader(apiErr.Code)
                    json.NewEncoder(w).Encode(apiErr)
                }
            }()
            next.ServeHTTP(w, r)
        })
    }
}
