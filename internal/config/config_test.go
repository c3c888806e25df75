package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "data/inputs", cfg.Paths.InputDir)
	assert.Equal(t, "data/products", cfg.Paths.OutputDir)
	assert.False(t, cfg.Pipeline.SaveAverages)
	assert.Equal(t, 1, cfg.Pipeline.AnalyzeConcurrency)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
logging:
  level: debug
pipeline:
  save_averages: true
  analyze_concurrency: 4
  output_base: jw00042
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Pipeline.SaveAverages)
	assert.Equal(t, 4, cfg.Pipeline.AnalyzeConcurrency)
	assert.Equal(t, "jw00042", cfg.Pipeline.OutputBase)
	// Untouched values keep their defaults.
	assert.Equal(t, "console", cfg.Logging.Output)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0644))

	t.Setenv("AMI3_LOGGING_LEVEL", "error")
	t.Setenv("AMI3_PIPELINE_SAVE_AVERAGES", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.True(t, cfg.Pipeline.SaveAverages)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad level", "logging:\n  level: loud\n"},
		{"bad output", "logging:\n  output: syslog\n"},
		{"bad concurrency", "pipeline:\n  analyze_concurrency: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
