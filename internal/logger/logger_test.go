package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/rubrix/internal/config"
)

func TestBuild_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(config.LogConfig{Level: "info", Format: "json"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("questions generated", zap.Int("count", 3))
	require.NoError(t, log.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "questions generated", entry["msg"])
	assert.Equal(t, float64(3), entry["count"])
	assert.Contains(t, entry, "timestamp")
}

func TestBuild_ConsoleDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(config.LogConfig{}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	log.Info("quiet")
	log.Warn("subject skipped", zap.String("subject", "Java"))

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "subject skipped")
	assert.Contains(t, out, `"subject": "Java"`)
}

func TestBuild_Invalid(t *testing.T) {
	_, err := build(config.LogConfig{Level: "loud"}, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)

	_, err = build(config.LogConfig{Format: "xml"}, zapcore.AddSync(&bytes.Buffer{}))
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	log, err := New(config.LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	assert.False(t, Nop().Core().Enabled(zapcore.ErrorLevel))
}
