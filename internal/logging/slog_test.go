package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFormat_WritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")

	log.Info(context.Background(), "hello", "user_id", "u1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "u1", rec["user_id"])
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "text")

	log.Debug(context.Background(), "invisible")
	log.Info(context.Background(), "also invisible")
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestWith_ChildCarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "json")

	child := log.With("component", "realtime")
	child.Info(context.Background(), "connected")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "realtime", rec["component"])
}

func TestParseLevel_DefaultsToInfo(t *testing.T) {
	assert.Equal(t, parseLevel("boom"), parseLevel(""))
}
