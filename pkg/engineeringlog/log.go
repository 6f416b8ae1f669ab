// Package engineeringlog implements the best-effort, append-only
// engineering activity log sink. Failures here never mask the caller's
// real error — every write is wrapped in a best-effort call by convention.
package engineeringlog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultPath is the activity log's authoritative location per spec.md §6.
const DefaultPath = ".adam_os/engineering/activity_log.jsonl"

var requiredKeys = []string{"created_at_utc", "event_type", "status"}

// AppendEvent validates event carries the required keys, serializes it as
// canonical-ish JSON (sorted keys, no insignificant whitespace, UTF-8
// output), appends it to path, and returns the hex SHA-256 of the appended
// line.
func AppendEvent(path string, event map[string]any) (string, error) {
	for _, k := range requiredKeys {
		if _, ok := event[k]; !ok {
			return "", fmt.Errorf("engineeringlog: event missing required key %q", k)
		}
	}

	line, err := marshalSortedCompact(event)
	if err != nil {
		return "", err
	}
	line = append(line, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return "", err
	}
	if err := f.Sync(); err != nil {
		return "", err
	}

	sum := sha256.Sum256(line)
	return hex.EncodeToString(sum[:]), nil
}

// LogToolExecution builds a standard tool-execution event and appends it,
// matching adam_os/tools/engineering_log_append.py's log_tool_execution.
func LogToolExecution(path string, createdAtUTC, toolName, status string, requestID, artifactID, errorID *string, extra map[string]any) (string, error) {
	event := map[string]any{
		"created_at_utc": createdAtUTC,
		"event_type":     "tool_execution",
		"tool_name":      toolName,
		"status":         status,
	}
	if requestID != nil {
		event["request_id"] = *requestID
	}
	if artifactID != nil {
		event["artifact_id"] = *artifactID
	}
	if errorID != nil {
		event["error_id"] = *errorID
	}
	for k, v := range extra {
		event[k] = v
	}
	return AppendEvent(path, event)
}

// SafeLogToolExecution calls LogToolExecution and swallows any error,
// matching every pipeline/inference tool's best-effort wrapping so logging
// failures never mask the original exception.
func SafeLogToolExecution(path string, createdAtUTC, toolName, status string, requestID, artifactID, errorID *string, extra map[string]any) {
	_, _ = LogToolExecution(path, createdAtUTC, toolName, status, requestID, artifactID, errorID, extra)
}

func marshalSortedCompact(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]byte, 0, 256)
	ordered = append(ordered, '{')
	for i, k := range keys {
		if i > 0 {
			ordered = append(ordered, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m[k])
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, kb...)
		ordered = append(ordered, ':')
		ordered = append(ordered, vb...)
	}
	ordered = append(ordered, '}')
	return ordered, nil
}
