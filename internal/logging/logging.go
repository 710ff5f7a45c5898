// Package logging builds summd's [slog.Logger]: JSON records always go
// to the configured log file; when summd is attached to a terminal, a
// second human-readable handler echoes the same records to the
// console, matching the dual file+console shape the corpus's other CLI
// agents use for foreground runs.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// New opens (creating parent directories as needed) filePath and
// returns a logger at the given level string ("debug", "info", "warn",
// "error"; unrecognized values fall back to "info"). JSON records
// always go to filePath; if console is non-nil (attach it only when
// stdout is a terminal), the same records are also echoed there in
// human-readable form. The returned closer must be called on shutdown
// to flush and close the log file.
func New(filePath, level string, console io.Writer) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	lvl := parseLevel(level)
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	})

	var handler slog.Handler = fileHandler
	if console != nil {
		handler = newMultiHandler(fileHandler, newHumanHandler(console, lvl))
	}

	return slog.New(handler), file, nil
}

// IsTerminal reports whether f refers to a character device, the
// cheapest stdlib-only proxy for "attached to an interactive
// terminal" (a real isatty needs a syscall that differs per platform,
// which this daemon has no other reason to depend on).
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// humanHandler renders a record as one line of "LEVEL: message
// [key=value ...]", for console output next to the JSON file handler.
type humanHandler struct {
	w     io.Writer
	level slog.Level
}

func newHumanHandler(w io.Writer, level slog.Level) *humanHandler {
	return &humanHandler{w: w, level: level}
}

func (h *humanHandler) Enabled(_ context.Context, level slog.Level) bool { return level >= h.level }

func (h *humanHandler) Handle(_ context.Context, r slog.Record) error {
	var buf strings.Builder
	buf.WriteString(r.Level.String())
	buf.WriteString(": ")
	buf.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&buf, " %s=%v", a.Key, a.Value) //nolint:errcheck // strings.Builder never errors
		return true
	})
	buf.WriteByte('\n')
	_, err := h.w.Write([]byte(buf.String()))
	return err
}

func (h *humanHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *humanHandler) WithGroup(_ string) slog.Handler      { return h }

// multiHandler fans a record out to every handler that accepts its
// level; used to write JSON to the log file and human text to the
// console from the one *slog.Logger.
type multiHandler struct {
	handlers []slog.Handler
}

func newMultiHandler(handlers ...slog.Handler) *multiHandler {
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: next}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: next}
}
