package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semret/internal/config"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew_WritesToFallbackAtLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(config.LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("search failed", "kind", "network")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "search failed")
	assert.Contains(t, out, "kind=network")
}

func TestNew_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semret.log")
	logger, closeFn, err := New(config.LogConfig{Level: "debug", File: path}, nil)
	require.NoError(t, err)

	logger.Debug("ingest ok", "status", 200)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ingest ok")
}

func TestNew_NilFallbackDiscards(t *testing.T) {
	logger, closeFn, err := New(config.LogConfig{}, nil)
	require.NoError(t, err)
	defer closeFn()
	assert.NotPanics(t, func() { logger.Info("nobody listens") })
}
