package logger

import "log/slog"

// Standard field keys for structured logging. Use these keys consistently
// so log aggregation can query across components.
const (
	// Tracing
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyRequestID = "request_id"

	// Operation
	KeyOperation  = "operation"
	KeyComponent  = "component"
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyStatus     = "status"
	KeyMethod     = "method"
	KeyRoute      = "route"

	// Client
	KeyClientIP = "client_ip"
	KeyUsername = "username"

	// Records
	KeySource   = "source"   // directory, mfa, hr
	KeyDomain   = "domain"   // directory domain key
	KeyFilename = "filename" // uploaded file name
	KeyRows     = "rows"     // rows read or written
	KeySkipped  = "skipped"  // rows skipped during ingest
	KeyCount    = "count"
	KeyKey      = "key" // identity key or object key

	// Storage
	KeyBucket = "bucket"
	KeyRegion = "region"
	KeyDriver = "driver"

	// Directory server
	KeyServer = "server"
	KeyPage   = "page"
)

func TraceID(id string) slog.Attr   { return slog.String(KeyTraceID, id) }
func SpanID(id string) slog.Attr    { return slog.String(KeySpanID, id) }
func RequestID(id string) slog.Attr { return slog.String(KeyRequestID, id) }

func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }
func Component(c string) slog.Attr  { return slog.String(KeyComponent, c) }
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}
func Status(code int) slog.Attr    { return slog.Int(KeyStatus, code) }
func Method(m string) slog.Attr    { return slog.String(KeyMethod, m) }
func Route(r string) slog.Attr     { return slog.String(KeyRoute, r) }
func ClientIP(ip string) slog.Attr { return slog.String(KeyClientIP, ip) }
func Username(u string) slog.Attr  { return slog.String(KeyUsername, u) }

func Source(src string) slog.Attr   { return slog.String(KeySource, src) }
func Domain(d string) slog.Attr     { return slog.String(KeyDomain, d) }
func Filename(n string) slog.Attr   { return slog.String(KeyFilename, n) }
func Rows(n int) slog.Attr          { return slog.Int(KeyRows, n) }
func Skipped(n int) slog.Attr       { return slog.Int(KeySkipped, n) }
func Count(n int) slog.Attr         { return slog.Int(KeyCount, n) }
func Key(k string) slog.Attr        { return slog.String(KeyKey, k) }
func Bucket(b string) slog.Attr     { return slog.String(KeyBucket, b) }
func Region(r string) slog.Attr     { return slog.String(KeyRegion, r) }
func Driver(d string) slog.Attr     { return slog.String(KeyDriver, d) }
func Server(addr string) slog.Attr  { return slog.String(KeyServer, addr) }
func Page(n int) slog.Attr          { return slog.Int(KeyPage, n) }

// Err returns an error attribute. A nil error yields an empty attribute,
// which slog drops.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
