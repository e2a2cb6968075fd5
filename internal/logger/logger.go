// Package logger is the process-wide structured logger. It wraps log/slog
// with a runtime-adjustable level and a choice of colored text or JSON
// output, and can decorate records with request-scoped LogContext fields.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Format names accepted by SetFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

// sink is where records go and how they are rendered.
type sink struct {
	w      io.Writer
	closer io.Closer // non-nil when the logger opened w itself
	color  bool
	format string
}

var (
	level = new(slog.LevelVar)

	mu      sync.Mutex
	current sink
	active  atomic.Pointer[slog.Logger]
)

func init() {
	current = sink{w: os.Stdout, color: isTerminal(os.Stdout.Fd()), format: FormatText}
	rebuild()
}

// rebuild swaps in a logger for the current sink. Callers hold mu, except
// during init.
func rebuild() {
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if current.format == FormatJSON {
		h = slog.NewJSONHandler(current.w, opts)
	} else {
		h = NewColorTextHandler(current.w, opts, current.color)
	}
	active.Store(slog.New(h))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	}
	return 0, false
}

func openOutput(target string) (sink, error) {
	switch strings.ToLower(target) {
	case "", "stdout":
		return sink{w: os.Stdout, color: isTerminal(os.Stdout.Fd())}, nil
	case "stderr":
		return sink{w: os.Stderr, color: isTerminal(os.Stderr.Fd())}, nil
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return sink{}, fmt.Errorf("failed to open log file %q: %w", target, err)
	}
	return sink{w: f, closer: f}, nil
}

// Init applies cfg. An Output of "stdout", "stderr" or a file path replaces
// the destination; a previously opened log file is closed. Empty fields
// leave the current setting unchanged.
func Init(cfg Config) error {
	if cfg.Output != "" {
		next, err := openOutput(cfg.Output)
		if err != nil {
			return err
		}

		mu.Lock()
		prev := current.closer
		next.format = current.format
		current = next
		rebuild()
		mu.Unlock()

		if prev != nil {
			_ = prev.Close()
		}
	}

	SetLevel(cfg.Level)
	SetFormat(cfg.Format)
	return nil
}

// InitWithWriter sends output to w. Tests use it to capture records.
func InitWithWriter(w io.Writer, lvl, format string, enableColor bool) {
	mu.Lock()
	current = sink{w: w, color: enableColor, format: current.format}
	rebuild()
	mu.Unlock()

	SetLevel(lvl)
	SetFormat(format)
}

// SetLevel sets the minimum level. Unknown names are ignored.
func SetLevel(name string) {
	if l, ok := parseLevel(name); ok {
		level.Set(l)
	}
}

// SetFormat switches between text and json output. Unknown names are ignored.
func SetFormat(format string) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatText && format != FormatJSON {
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if current.format == format {
		return
	}
	current.format = format
	rebuild()
}

// Enabled reports whether records at lvl are currently written.
func Enabled(lvl slog.Level) bool {
	return lvl >= level.Level()
}

func emit(ctx context.Context, lvl slog.Level, msg string, args []any) {
	if !Enabled(lvl) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	active.Load().Log(ctx, lvl, msg, withContextFields(ctx, args)...)
}

// Debug logs at debug level with key/value pairs or slog.Attr values.
func Debug(msg string, args ...any) { emit(context.Background(), slog.LevelDebug, msg, args) }

// Info logs at info level.
func Info(msg string, args ...any) { emit(context.Background(), slog.LevelInfo, msg, args) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { emit(context.Background(), slog.LevelWarn, msg, args) }

// Error logs at error level.
func Error(msg string, args ...any) { emit(context.Background(), slog.LevelError, msg, args) }

// DebugCtx logs at debug level, prefixing the LogContext fields found in ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelDebug, msg, args)
}

// InfoCtx logs at info level with context fields.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelInfo, msg, args)
}

// WarnCtx logs at warn level with context fields.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelWarn, msg, args)
}

// ErrorCtx logs at error level with context fields.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	emit(ctx, slog.LevelError, msg, args)
}

// withContextFields prepends the non-empty LogContext fields to args.
func withContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	fields := [...]struct{ key, value string }{
		{KeyRequestID, lc.RequestID},
		{KeyTraceID, lc.TraceID},
		{KeySpanID, lc.SpanID},
		{KeyOperation, lc.Operation},
		{KeySource, lc.Source},
		{KeyDomain, lc.Domain},
		{KeyClientIP, lc.ClientIP},
	}

	out := make([]any, 0, 2*len(fields)+len(args))
	for _, f := range fields {
		if f.value != "" {
			out = append(out, f.key, f.value)
		}
	}
	return append(out, args...)
}

// With returns a slog.Logger bound to the current output with extra attributes.
func With(args ...any) *slog.Logger {
	return active.Load().With(args...)
}

// Duration returns the milliseconds elapsed since start.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
