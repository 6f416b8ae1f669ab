package artifacts

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
)

// Registry is the append-only artifact_registry.jsonl file. Every line is a
// canonical JSON object followed by "\n"; empty lines are tolerated on read
// but never produced on write. Appends are serialized in-process and use
// POSIX O_APPEND semantics so concurrent external appenders are tolerated
// per spec.md §5.
type Registry struct {
	path string
	mu   sync.Mutex
}

// NewRegistry returns a Registry backed by the JSONL file at path. The file
// and its parent directory are created lazily on first append.
func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

// Path returns the registry's backing file path.
func (r *Registry) Path() string { return r.path }

// Append validates rec and appends it as one canonical JSON line. It does
// not check for duplicates — callers use Contains first to preserve
// idempotency (spec.md's "re-invocation must be a no-op" rule).
func (r *Registry) Append(rec Record) error {
	if err := rec.Validate(nil); err != nil {
		return err
	}

	line, err := canonicalize.Bytes(rec)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// Contains reports whether a record with the given artifact_id and kind has
// already been appended, by scanning the on-disk file — the on-disk JSONL
// is the authoritative source of truth per spec.md §4.2; an in-process
// index (pkg/registryindex) MAY accelerate this but is never required for
// correctness.
func (r *Registry) Contains(artifactID string, kind Kind) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	idNeedle := fmt.Sprintf(`"artifact_id":%s`, quoteJSON(artifactID))
	kindNeedle := fmt.Sprintf(`"kind":%s`, quoteJSON(string(kind)))

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.Contains(line, idNeedle) && strings.Contains(line, kindNeedle) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// Load reads every record from the registry in append order. Empty lines
// are skipped.
func (r *Registry) Load() ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("corrupt registry line in %s: %w", r.path, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func quoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
