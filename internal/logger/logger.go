package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

type Config struct {
	Level  string
	Format string // "text", "json", "console"
	Output io.Writer
	// File, when set, receives a copy of every line.
	File string
	// RawTerminal ends console lines with "\r\n" while stdin is in raw
	// mode and the terminal no longer translates "\n".
	RawTerminal bool
}

var (
	once   sync.Once
	lg     *slog.Logger
	closer io.Closer
)

// Init installs the process logger. Only the first call has any effect.
func Init(cfg Config) error {
	var initErr error
	once.Do(func() {
		handler, c, err := newHandler(cfg)
		if err != nil {
			initErr = err
			handler = &consoleHandler{w: os.Stderr, level: parseLevel(cfg.Level)}
		}
		closer = c
		lg = slog.New(handler)
		slog.SetDefault(lg)
	})
	return initErr
}

func newHandler(cfg Config) (slog.Handler, io.Closer, error) {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	var c io.Closer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		cfg.Output = io.MultiWriter(cfg.Output, f)
		c = f
	}
	level := parseLevel(cfg.Level)
	switch cfg.Format {
	case "json":
		return slog.NewJSONHandler(cfg.Output, &slog.HandlerOptions{Level: level}), c, nil
	case "text":
		return slog.NewTextHandler(cfg.Output, &slog.HandlerOptions{Level: level}), c, nil
	default:
		eol := "\n"
		if cfg.RawTerminal {
			eol = "\r\n"
		}
		return &consoleHandler{w: cfg.Output, level: level, eol: eol}, c, nil
	}
}

func L() *slog.Logger {
	if lg == nil {
		_ = Init(Config{Level: "debug", Format: "console"})
	}
	return lg
}

// Close flushes and closes the log file, if one was opened.
func Close() error {
	if closer == nil {
		return nil
	}
	return closer.Close()
}

func parseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// consoleHandler outputs human-friendly log lines:
//
//	12:00:00 INFO  Action done  action=takeoff run=1 elapsed=1.2s
type consoleHandler struct {
	mu    sync.Mutex
	w     io.Writer
	level slog.Level
	eol   string
	attrs []slog.Attr
	group string
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time.Format(time.TimeOnly)
	lvl := levelTag(r.Level)

	line := fmt.Sprintf("%s %s %s", ts, lvl, r.Message)

	for _, a := range h.attrs {
		line += formatAttr(h.group, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		line += formatAttr(h.group, a)
		return true
	})

	eol := h.eol
	if eol == "" {
		eol = "\n"
	}
	line += eol

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprint(h.w, line)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &consoleHandler{
		w:     h.w,
		level: h.level,
		eol:   h.eol,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
		group: h.group,
	}
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	prefix := name
	if h.group != "" {
		prefix = h.group + "." + name
	}
	return &consoleHandler{
		w:     h.w,
		level: h.level,
		eol:   h.eol,
		attrs: append([]slog.Attr{}, h.attrs...),
		group: prefix,
	}
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN "
	case l >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

func formatAttr(group string, a slog.Attr) string {
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	return fmt.Sprintf("  %s=%v", key, a.Value)
}
