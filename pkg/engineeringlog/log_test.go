package engineeringlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendEventRequiresKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	_, err := AppendEvent(path, map[string]any{"created_at_utc": "x"})
	require.Error(t, err)
}

func TestAppendEventWritesAndHashes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	hash, err := AppendEvent(path, map[string]any{
		"created_at_utc": "2026-02-12T00:00:00Z",
		"event_type":     "tool_execution",
		"status":         "ok",
	})
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event_type":"tool_execution"`)
}

func TestLogToolExecutionOptionalFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	req := "req-1"
	_, err := LogToolExecution(path, "2026-02-12T00:00:00Z", "artifact.ingest", "ok", &req, nil, nil, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"request_id":"req-1"`)
	assert.NotContains(t, string(data), "artifact_id")
}

func TestSafeLogToolExecutionNeverPanics(t *testing.T) {
	assert.NotPanics(t, func() {
		SafeLogToolExecution("/nonexistent/dir/that/cannot/be/created\x00", "x", "tool", "ok", nil, nil, nil, nil)
	})
}
