package infrastructure

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssmith-git/jwst/internal/config"
)

func TestNewLoggerConsole(t *testing.T) {
	logger, closer, err := NewLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.Nil(t, closer)
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ami3.log")
	logger, closer, err := NewLogger(config.LoggingConfig{
		Level:    "debug",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	logger.Info("probe", slog.String("k", "v"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"probe"`)
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"WARN", slog.LevelWarn},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}
