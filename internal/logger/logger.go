// Package logger is a small leveled logger used across the adapter.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Level is a logging threshold.
type Level = slog.Level

const (
	LevelTrace = slog.LevelDebug - 4
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level   = new(slog.LevelVar)
	current atomic.Pointer[slog.Logger]
)

func init() {
	level.Set(LevelInfo)
	SetOutput(os.Stderr)
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	current.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) { level.Set(l) }

// ParseLevel parses a level name.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error", "fatal", "panic":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("invalid log level %q (valid: trace, debug, info, warn, error)", s)
}

func logf(l Level, format string, args ...any) {
	lg := current.Load()
	if !lg.Enabled(context.Background(), l) {
		return
	}
	lg.Log(context.Background(), l, fmt.Sprintf(format, args...))
}

func Trace(format string, args ...any) { logf(LevelTrace, format, args...) }
func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }
func Info(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(LevelWarn, format, args...) }
func Error(format string, args ...any) { logf(LevelError, format, args...) }
