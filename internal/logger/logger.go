package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"residadmin/internal/config"
)

// Load builds the process logger. An unknown level falls back to info.
func Load(cfg config.LogConfig) *slog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		out = os.Stderr
	}

	l, err := New(out, cfg)
	if err != nil {
		l, _ = New(out, config.LogConfig{Level: "info", Format: "text"})
		l.Warn("logger", "error", err)
	}
	return l
}

func New(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.Level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
}
