package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantTime  time.Time
		wantLevel slog.Level
		wantOK    bool
	}{
		{
			name:      "text format",
			line:      "[2026-01-15 10:30:45] [WARN] Upload rejected",
			wantTime:  time.Date(2026, 1, 15, 10, 30, 45, 0, time.Local),
			wantLevel: slog.LevelWarn,
			wantOK:    true,
		},
		{
			name:      "json format",
			line:      `{"time":"2026-01-15T10:30:45.123Z","level":"ERROR","msg":"ok"}`,
			wantTime:  time.Date(2026, 1, 15, 10, 30, 45, 123000000, time.UTC),
			wantLevel: slog.LevelError,
			wantOK:    true,
		},
		{name: "no header", line: "panic: something went wrong"},
		{name: "broken json", line: `{"time":`},
		{name: "bracket but no time", line: "[not a time] hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, lvl, ok := parseHeader(tt.line)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.True(t, tt.wantTime.Equal(ts), "got %v, want %v", ts, tt.wantTime)
				assert.Equal(t, tt.wantLevel, lvl)
			}
		})
	}
}

func TestNewLineFilter(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	f, err := newLineFilter("30m", "warn", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-30*time.Minute), f.since)
	assert.Equal(t, slog.LevelWarn, f.minLevel)

	f, err = newLineFilter("2026-01-15T10:00:00Z", "", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), f.since)
	assert.False(t, f.byLevel)

	_, err = newLineFilter("yesterday", "", now)
	assert.Error(t, err)
	_, err = newLineFilter("", "loud", now)
	assert.Error(t, err)
}

var sampleLog = strings.Join([]string{
	"[2026-01-15 09:00:00] [INFO] one",
	"[2026-01-15 10:00:00] [ERROR] two",
	"continuation of two",
	"[2026-01-15 11:00:00] [INFO] three",
}, "\n")

func mustFilter(t *testing.T, since, level string) *lineFilter {
	t.Helper()
	f, err := newLineFilter(since, level, time.Now())
	require.NoError(t, err)
	return f
}

func TestTailLines(t *testing.T) {
	t.Run("last n", func(t *testing.T) {
		got, err := tailLines(strings.NewReader(sampleLog), 2, mustFilter(t, "", "").keep)
		require.NoError(t, err)
		assert.Equal(t, []string{"continuation of two", "[2026-01-15 11:00:00] [INFO] three"}, got)
	})

	t.Run("more than available", func(t *testing.T) {
		got, err := tailLines(strings.NewReader(sampleLog), 10, mustFilter(t, "", "").keep)
		require.NoError(t, err)
		assert.Len(t, got, 4)
		assert.Contains(t, got[0], "one")
	})

	t.Run("since drops older entries", func(t *testing.T) {
		f := mustFilter(t, "", "")
		f.since = time.Date(2026, 1, 15, 9, 30, 0, 0, time.Local)
		got, err := tailLines(strings.NewReader(sampleLog), 10, f.keep)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Contains(t, got[0], "two")
	})

	t.Run("level keeps continuation lines", func(t *testing.T) {
		got, err := tailLines(strings.NewReader(sampleLog), 10, mustFilter(t, "", "error").keep)
		require.NoError(t, err)
		assert.Equal(t, []string{"[2026-01-15 10:00:00] [ERROR] two", "continuation of two"}, got)
	})

	t.Run("zero lines", func(t *testing.T) {
		got, err := tailLines(strings.NewReader(sampleLog), 0, mustFilter(t, "", "").keep)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestTailerDrain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idrecon.log")
	require.NoError(t, os.WriteFile(path, []byte("[2026-01-15 09:00:00] [INFO] old\n"), 0644))

	tl, err := openTail(path, io.SeekEnd)
	require.NoError(t, err)
	defer tl.close()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, _ = f.WriteString("[2026-01-15 09:01:00] [INFO] new\n[2026-01-15 09:02:00] [INFO] hal")
	require.NoError(t, f.Close())

	var out bytes.Buffer
	filter := mustFilter(t, "", "")
	require.NoError(t, tl.drain(&out, filter))
	assert.Equal(t, "[2026-01-15 09:01:00] [INFO] new\n", out.String(), "partial line is held back")

	require.NoError(t, os.WriteFile(path, []byte("[2026-01-15 09:03:00] [INFO] fresh\n"), 0644))
	out.Reset()
	require.NoError(t, tl.drain(&out, filter))
	assert.Equal(t, "[2026-01-15 09:03:00] [INFO] fresh\n", out.String(), "truncated file is reread")
}
