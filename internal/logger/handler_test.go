package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandlerWritesAttrsAndRedacts(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "pretty", "debug")

	log.With("request_id", "r-1").Info("user logged in", "user_id", "u-1", "password", "pw123")

	out := buf.String()
	assert.Contains(t, out, "user logged in")
	assert.Contains(t, out, "request_id")
	assert.Contains(t, out, "u-1")
	assert.Contains(t, out, redacted)
	assert.NotContains(t, out, "pw123")
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "", "warn")

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json", "info")

	log.Info("refreshed", "refresh_token", "secret-value")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "refreshed", line["msg"])
	assert.Equal(t, redacted, line["refresh_token"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("unknown"))
}
