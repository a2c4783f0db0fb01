package log

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"", LevelInfo},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"off", LevelNone},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "disable", LevelNone.String())
	assert.Equal(t, "level(42)", Level(42).String())
}

func TestGologLoggerFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := NewGologLoggerTo(&buf, "[test] ", LevelWarn)

	logger.Info("node %s started", "agent")
	logger.Warn("step limit %d close", 24)
	logger.Error("boom: %v", "bad")

	out := buf.String()
	assert.NotContains(t, out, "node agent started")
	assert.Contains(t, out, "step limit 24 close")
	assert.Contains(t, out, "boom: bad")
	assert.Contains(t, out, "[test] ")
}

func TestGologLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewGologLoggerTo(&buf, "", LevelNone)
	logger.Error("silenced")
	assert.Empty(t, buf.String())

	logger.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, logger.Level())
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestWrapGolog(t *testing.T) {
	g := golog.New()
	logger := WrapGolog(g, LevelError)
	assert.Equal(t, golog.ErrorLevel, g.Level)
	assert.Equal(t, LevelError, logger.Level())
}

func TestDefaultLogger(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	SetDefault(NewGologLoggerTo(&buf, "", LevelDebug))
	Default().Debug("d %d", 1)
	assert.Contains(t, buf.String(), "d 1")

	SetDefault(nil)
	assert.Equal(t, Discard, Default())
}
