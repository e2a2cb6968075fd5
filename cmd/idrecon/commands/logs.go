package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/pkg/config"
)

var (
	logsFollow bool
	logsLines  int
	logsSince  string
	logsLevel  string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show server logs",
	Long: `Show and optionally follow the log file configured as logging.output.
Servers logging to stdout or stderr have no file to read.

Lines without a timestamp, such as stack traces, are kept with the entry
they follow.

Examples:
  # Last 100 lines
  idrecon logs

  # Follow, surviving log rotation
  idrecon logs -f

  # Warnings and errors of the last hour
  idrecon logs --since 1h --level warn

  # Since a point in time
  idrecon logs --since 2026-01-15T10:00:00Z`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Keep printing lines as they are written")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Number of lines to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Only entries since an RFC3339 time or a duration ago (e.g. 30m)")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Only entries at or above this level (debug|info|warn|error)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := cfg.Logging.Output
	if path == "stdout" || path == "stderr" {
		return fmt.Errorf("server is configured to log to %s, not a file\nSet 'logging.output' to a file path to use this command", path)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("log file not found: %s\nThe server may not have started yet or is logging elsewhere", path)
	}

	filter, err := newLineFilter(logsSince, logsLevel, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := printTail(out, path, logsLines, filter); err != nil {
		return err
	}
	if !logsFollow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Following %s (Ctrl+C to stop)...\n", path)
	return follow(ctx, out, path, filter)
}

// lineFilter selects log entries by time and level. Lines without a
// recognizable header inherit the decision of the entry above them.
type lineFilter struct {
	since    time.Time
	minLevel slog.Level
	byLevel  bool

	keepingEntry bool
}

func newLineFilter(since, level string, now time.Time) (*lineFilter, error) {
	f := &lineFilter{keepingEntry: true}

	if since != "" {
		if d, err := time.ParseDuration(since); err == nil {
			f.since = now.Add(-d)
		} else if t, err := time.Parse(time.RFC3339, since); err == nil {
			f.since = t
		} else {
			return nil, fmt.Errorf("invalid --since %q: use RFC3339 or a duration such as 30m", since)
		}
	}

	if level != "" {
		if err := f.minLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
			return nil, fmt.Errorf("invalid --level %q: %w", level, err)
		}
		f.byLevel = true
	}
	return f, nil
}

func (f *lineFilter) keep(line string) bool {
	ts, lvl, ok := parseHeader(line)
	if !ok {
		return f.keepingEntry
	}
	f.keepingEntry = (f.since.IsZero() || !ts.Before(f.since)) &&
		(!f.byLevel || lvl >= f.minLevel)
	return f.keepingEntry
}

// parseHeader reads the time and level of a text record
// ("[2006-01-02 15:04:05] [INFO] ...") or a JSON record.
func parseHeader(line string) (time.Time, slog.Level, bool) {
	var lvl slog.Level

	if rest, ok := strings.CutPrefix(line, "["); ok && len(rest) > len(logger.TimeLayout) && rest[len(logger.TimeLayout)] == ']' {
		ts, err := time.ParseInLocation(logger.TimeLayout, rest[:len(logger.TimeLayout)], time.Local)
		if err != nil {
			return time.Time{}, 0, false
		}
		rest = strings.TrimPrefix(rest[len(logger.TimeLayout)+1:], " [")
		if name, _, found := strings.Cut(rest, "]"); found {
			_ = lvl.UnmarshalText([]byte(name))
		}
		return ts, lvl, true
	}

	if strings.HasPrefix(line, "{") {
		var rec struct {
			Time  time.Time  `json:"time"`
			Level slog.Level `json:"level"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err == nil && !rec.Time.IsZero() {
			return rec.Time, rec.Level, true
		}
	}
	return time.Time{}, 0, false
}

func printTail(w io.Writer, path string, n int, filter *lineFilter) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	lines, err := tailLines(file, n, filter.keep)
	if err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, line)
	}
	return nil
}

// tailLines returns the last n lines of r accepted by keep, holding at most
// n lines in memory.
func tailLines(r io.Reader, n int, keep func(string) bool) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	ring := make([]string, n)
	count := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); keep(line) {
			ring[count%n] = line
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if count <= n {
		return ring[:count], nil
	}
	start := count % n
	return append(ring[start:], ring[:start]...), nil
}

// follow prints lines appended to path until ctx ends. The directory is
// watched so a rotated file is picked up when it is recreated, and a
// truncated file is read again from the start.
func follow(ctx context.Context, w io.Writer, path string, filter *lineFilter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch log directory: %w", err)
	}

	t, err := openTail(path, io.SeekEnd)
	if err != nil {
		return err
	}
	defer func() { t.close() }()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create):
				t.close()
				if t, err = openTail(path, io.SeekStart); err != nil {
					return err
				}
				fallthrough
			case ev.Has(fsnotify.Write):
				if err := t.drain(w, filter); err != nil {
					return err
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

type tailer struct {
	file    *os.File
	reader  *bufio.Reader
	offset  int64
	partial string
}

func openTail(path string, whence int) (*tailer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	off, err := f.Seek(0, whence)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to seek log file: %w", err)
	}
	return &tailer{file: f, reader: bufio.NewReader(f), offset: off}, nil
}

func (t *tailer) close() {
	if t != nil && t.file != nil {
		_ = t.file.Close()
	}
}

// drain prints every complete line written since the last call. An
// unterminated line is held until its newline arrives.
func (t *tailer) drain(w io.Writer, filter *lineFilter) error {
	if st, err := t.file.Stat(); err == nil && st.Size() < t.offset {
		if _, err := t.file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to rewind truncated log file: %w", err)
		}
		t.reader.Reset(t.file)
		t.offset, t.partial = 0, ""
	}

	for {
		chunk, err := t.reader.ReadString('\n')
		t.offset += int64(len(chunk))
		if err != nil {
			t.partial += chunk
			return nil
		}
		line := t.partial + chunk
		t.partial = ""
		if filter.keep(strings.TrimRight(line, "\r\n")) {
			_, _ = io.WriteString(w, line)
		}
	}
}
