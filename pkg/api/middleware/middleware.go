// Package middleware provides the HTTP middleware of the idrecon API:
// tracing, request-scoped log context, access logging and request metrics.
package middleware

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/internal/telemetry"
	"github.com/marmos91/idrecon/pkg/metrics"
)

// clientIP strips the port from RemoteAddr. RealIP may already have
// replaced it with a bare address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// routePattern returns the matched chi pattern, or "" before routing.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}

// Tracing starts a server span per request. The span is named after the
// route pattern once routing has completed.
func Tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := telemetry.StartSpan(r.Context(), "HTTP "+r.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				telemetry.ClientIP(clientIP(r)),
				attribute.String("http.request.method", r.Method),
			),
		)
		defer span.End()

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if pattern := routePattern(r); pattern != "" {
			span.SetName("HTTP " + r.Method + " " + pattern)
			span.SetAttributes(telemetry.Route(pattern))
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}

// LogContext attaches a logger.LogContext carrying the request ID, client
// address and trace identifiers.
func LogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		lc := logger.NewLogContext(clientIP(r))
		lc.RequestID = chimiddleware.GetReqID(ctx)
		ctx = logger.Annotate(logger.WithContext(ctx, lc),
			logger.TraceField(telemetry.TraceID(ctx), telemetry.SpanID(ctx)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs every request and, when m is non-nil, records it by
// route pattern. Health checks are logged at DEBUG.
func RequestLogger(m metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			if m != nil {
				m.RecordRequest(route, status, time.Since(start))
			}

			attrs := []any{
				logger.Method(r.Method),
				logger.Route(route),
				"path", r.URL.Path,
				logger.Status(status),
				"bytes", ww.BytesWritten(),
				logger.DurationMs(logger.Duration(start)),
			}
			switch {
			case isHealthPath(r.URL.Path):
				logger.DebugCtx(r.Context(), "API request completed", attrs...)
			case status >= http.StatusInternalServerError:
				logger.WarnCtx(r.Context(), "API request failed", attrs...)
			default:
				logger.InfoCtx(r.Context(), "API request completed", attrs...)
			}
		})
	}
}

func isHealthPath(path string) bool {
	return path == "/health" || path == "/health/" || path == "/health/ready" || path == "/metrics"
}
