package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelInfo, &buf)

	logger.Debug("hidden %d", 1)
	logger.Info("visible %d", 2)
	logger.Warn("warned")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO]")
	assert.Contains(t, out, "visible 2")
	assert.Contains(t, out, "[WARN]")
}

func TestDefaultLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelError, &buf)

	logger.Info("dropped")
	logger.SetLevel(LevelDebug)
	logger.Debug("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestDefaultLogger_WithField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelInfo, &buf)

	logger.WithField("patch", 7).Info("resampled")

	assert.Contains(t, buf.String(), "patch=7")
	assert.Contains(t, buf.String(), "resampled")

	// The parent logger must not inherit the field.
	buf.Reset()
	logger.Info("plain")
	assert.NotContains(t, buf.String(), "patch=7")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLogLevel("bogus"))
}

func TestNullLogger(t *testing.T) {
	var logger Logger = &NullLogger{}
	assert.NotPanics(t, func() {
		logger.Debug("a")
		logger.WithField("k", "v").Error("b")
	})
}
