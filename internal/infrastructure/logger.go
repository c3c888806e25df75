// Package infrastructure wires the process-level concerns the pipeline
// itself stays agnostic of: structured logging and OpenTelemetry
// providers.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ssmith-git/jwst/internal/config"
)

// NewLogger builds a JSON slog logger from configuration. The logger is
// returned to the caller rather than installed as a process-wide
// default, so repeated or concurrent runs each carry their own sink.
// The returned closer owns the log file, if one was opened.
func NewLogger(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}

	var output io.Writer
	var closer io.Closer

	switch strings.ToLower(cfg.Output) {
	case "file":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		output = file
		closer = file
	case "both":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		output = io.MultiWriter(os.Stdout, file)
		closer = file
	default:
		output = os.Stdout
	}

	return slog.New(slog.NewJSONHandler(output, opts)), closer, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}
