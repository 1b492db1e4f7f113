// Package testutil provides test helpers for structured logging and
// throwaway project directories.
package testutil

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/leapstack-labs/salesprep/internal/logging"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// LogCapture collects log lines in the cleaning log format.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *LogCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

// Lines returns the captured lines without timestamps, e.g. "INFO - Starting ...".
func (c *LogCapture) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []string
	for _, line := range strings.Split(strings.TrimSpace(c.buf.String()), "\n") {
		if line == "" {
			continue
		}
		if _, rest, ok := strings.Cut(line, " - "); ok {
			line = rest
		}
		out = append(out, line)
	}
	return out
}

// NewCaptureLogger returns an INFO logger that records lines into a LogCapture
// and mirrors them to t.Log.
func NewCaptureLogger(t testing.TB) (*slog.Logger, *LogCapture) {
	t.Helper()
	capture := &LogCapture{}
	return slog.New(logging.MultiHandler{
		logging.NewLineHandler(capture, slog.LevelInfo),
		slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}), capture
}
