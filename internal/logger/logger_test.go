package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("catalog loaded", zap.Int("entries", 3))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "catalog loaded", entry["msg"])
	assert.EqualValues(t, 3, entry["entries"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Format: "console"}, &buf)
	require.NoError(t, err)

	log.Debug("skipping catalog record")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "skipping catalog record")
}

func TestNewBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"}, &bytes.Buffer{})
	require.Error(t, err)
}
