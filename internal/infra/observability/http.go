package observability

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

type requestFieldsKey struct{}

// requestFields collects fields added by inner handlers for the request log line.
type requestFields struct {
	mu     sync.Mutex
	fields []zap.Field
}

// AddRequestFields attaches fields to the access log line of the current
// request. It is a no-op outside RequestLogger.
func AddRequestFields(ctx context.Context, fields ...zap.Field) {
	rf, ok := ctx.Value(requestFieldsKey{}).(*requestFields)
	if !ok {
		return
	}
	rf.mu.Lock()
	rf.fields = append(rf.fields, fields...)
	rf.mu.Unlock()
}

// RequestLogger writes one zap line per request: Error for 5xx, Warn for 4xx,
// Info otherwise. Handlers enrich it with AddRequestFields.
func RequestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			rf := &requestFields{}
			r = r.WithContext(context.WithValue(r.Context(), requestFieldsKey{}, rf))

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				rf.mu.Lock()
				fields := append([]zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("latency", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				}, rf.fields...)
				rf.mu.Unlock()

				switch {
				case status >= 500:
					logger.Error("http request", fields...)
				case status >= 400:
					logger.Warn("http request", fields...)
				default:
					logger.Info("http request", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// TracingMiddleware continues the caller's trace from the request headers.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
