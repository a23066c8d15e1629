package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel("WARNING"))
	assert.Equal(t, ERROR, ParseLevel(" error "))
	assert.Equal(t, INFO, ParseLevel(""))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}

func TestNewLoggerWritesToFileAndConsole(t *testing.T) {
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "timeline.log")

	logger, err := NewLogger(Config{Level: INFO, OutputFile: logFile, Output: &console})
	require.NoError(t, err)

	logger.Slog().Info("commit processed", "sha", "abc123")
	logger.Slog().Debug("hidden")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sha=abc123")
	assert.Contains(t, console.String(), "commit processed")
	assert.NotContains(t, console.String(), "hidden")
}

func TestRotateIfNeeded(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "timeline.log")
	require.NoError(t, os.WriteFile(logFile, bytes.Repeat([]byte("x"), 64), 0644))

	logger, err := NewLogger(Config{OutputFile: logFile, MaxSize: 32, Output: &bytes.Buffer{}})
	require.NoError(t, err)
	defer logger.Close()

	_, err = os.Stat(logFile + ".1")
	assert.NoError(t, err, "oversized log should have been rotated to .1")
}

func TestComponentUsesGlobalLogger(t *testing.T) {
	var console bytes.Buffer
	require.NoError(t, Initialize(Config{Level: DEBUG, Output: &console}))
	defer Close()

	Component("timeline").Debug("bucket emitted", "date", "2025-01-02")
	assert.Contains(t, console.String(), "component=timeline")
	assert.Contains(t, console.String(), "date=2025-01-02")
}
