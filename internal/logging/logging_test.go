package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "json")

	logger.Debug("hidden")
	logger.Info("page loaded", "page", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "page loaded", line["msg"])
	assert.Equal(t, float64(2), line["page"])
}

func TestNew_Tint(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelDebug, "tint")

	logger.Debug("request", "status", 200)
	assert.Contains(t, buf.String(), "request")
	assert.Contains(t, buf.String(), "status")
}

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn, "text")

	logger.Info("quiet")
	assert.Empty(t, buf.String())
	logger.Warn("loud")
	assert.Contains(t, buf.String(), "msg=loud")
}
