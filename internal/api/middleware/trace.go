package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ctlabs/taskrouter/internal/api/shared"
	"github.com/ctlabs/taskrouter/internal/platform/logger"
)

// TraceMiddleware gives each request a trace ID and a logger carrying it,
// both stored in the request context, and logs one line when the request
// completes. Mount it after chi's RequestID so the request_id is included.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)

		log := slog.Default().With(slog.String("trace_id", traceID))
		if reqID := chimw.GetReqID(ctx); reqID != "" {
			log = log.With(slog.String("request_id", reqID))
		}
		ctx = logger.WithLogger(ctx, log)

		log.Debug("request started",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)))
	})
}
