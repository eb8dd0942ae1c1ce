package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwx-research/lms-cli/internal/errors"
)

type Config struct {
	Level  slog.Level
	Format string // "json" or "text"
	// File receives logs in addition to Output when set.
	File   string
	Output io.Writer
}

func (c Config) Validate() error {
	switch c.Format {
	case "", "text", "json":
	default:
		return errors.Errorf("unknown log format %q", c.Format)
	}

	return nil
}

// Setup builds a logger from cfg. The returned closer releases the log file, if any.
func Setup(cfg Config) (*slog.Logger, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "validation failed")
	}

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)

	if cfg.Output != nil {
		writers = append(writers, cfg.Output)
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, errors.Wrapf(err, "unable to create log directory for %q", cfg.File)
		}

		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "unable to open log file %q", cfg.File)
		}
		writers = append(writers, file)
		closer = file
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	writer := io.MultiWriter(writers...)
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}

	return slog.New(handler), closer, nil
}

// ParseLevel converts a string to slog.Level, defaulting to warn for the CLI.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func WithCommand(logger *slog.Logger, cmd string) *slog.Logger {
	return logger.With("command", cmd)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
