package inference

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

// Registry is the append-only inference_registry.jsonl file, structurally
// identical to pkg/artifacts.Registry but kept as a separate type/file per
// spec.md's "separate registries by design" rule (see DESIGN.md).
type Registry struct {
	path string
	mu   sync.Mutex
}

func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

func (r *Registry) Path() string { return r.path }

func (r *Registry) Append(rec Record) error {
	if err := rec.Validate(); err != nil {
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

	idBytes, _ := json.Marshal(artifactID)
	kindBytes, _ := json.Marshal(string(kind))
	idNeedle := fmt.Sprintf(`"artifact_id":%s`, idBytes)
	kindNeedle := fmt.Sprintf(`"kind":%s`, kindBytes)

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
