package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.in))
		})
	}
}

func TestNewLoggerAddsModuleAndVersion(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "gqlstack", "v1.2.3", "info")

	logger.Info("bundle written", "files", 3)
	logger.Debug("suppressed")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "gqlstack", rec["module"])
	assert.Equal(t, "v1.2.3", rec["version"])
	assert.Equal(t, "bundle written", rec["msg"])
	assert.EqualValues(t, 3, rec["files"])
}

func TestNewLoggerFallsBackToEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")

	var buf bytes.Buffer
	logger := newLogger(&buf, "gqlstack", "dev", "")
	logger.Warn("not emitted")

	assert.Empty(t, buf.String())
}
