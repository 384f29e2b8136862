package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONWithTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := New("debug", &buf)
	logger.Debug("resolved", "id", "A#3")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "resolved", record["msg"])
	assert.Equal(t, "A#3", record["id"])
	assert.Contains(t, record, "timestamp")
	assert.NotContains(t, record, "time")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New("WARN", &buf)
	logger.Info("hidden")
	assert.Zero(t, buf.Len())
	logger.Warn("shown")
	assert.NotZero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestOrDiscard(t *testing.T) {
	l := OrDiscard(nil)
	require.NotNil(t, l)
	l.Error("dropped")
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
