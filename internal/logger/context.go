package logger

import (
	"context"
	"time"
)

type contextKey struct{}

// LogContext carries request-scoped fields that the ...Ctx functions add
// to every record. Empty fields are omitted.
type LogContext struct {
	RequestID string
	TraceID   string
	SpanID    string
	Operation string // upload, sync, consolidate, ...
	Source    string // directory, mfa or hr
	Domain    string // directory domain key
	ClientIP  string // without port
	StartTime time.Time
}

// NewLogContext starts a LogContext for a request from clientIP.
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{ClientIP: clientIP, StartTime: time.Now()}
}

// WithContext stores lc in ctx.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, contextKey{}, lc)
}

// FromContext returns the LogContext stored in ctx, or nil.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(contextKey{}).(*LogContext)
	return lc
}

// Field sets one LogContext field. See Annotate.
type Field func(*LogContext)

// OperationField names the logical operation.
func OperationField(op string) Field {
	return func(lc *LogContext) { lc.Operation = op }
}

// SourceField scopes records to a record source and, for directory data,
// a domain.
func SourceField(source, domain string) Field {
	return func(lc *LogContext) {
		lc.Source = source
		lc.Domain = domain
	}
}

// TraceField records the active trace and span ids.
func TraceField(traceID, spanID string) Field {
	return func(lc *LogContext) {
		lc.TraceID = traceID
		lc.SpanID = spanID
	}
}

// Annotate returns a context whose LogContext is a copy of the one in ctx
// with fields applied. The LogContext in ctx is never modified, so handlers
// running concurrently under one parent do not see each other's fields.
func Annotate(ctx context.Context, fields ...Field) context.Context {
	next := LogContext{StartTime: time.Now()}
	if lc := FromContext(ctx); lc != nil {
		next = *lc
	}
	for _, f := range fields {
		f(&next)
	}
	return WithContext(ctx, &next)
}
