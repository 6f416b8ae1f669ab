// Package registryindex provides an optional secondary index accelerating
// artifacts.Registry.Contains, which otherwise scans the whole JSONL file
// on every call. The on-disk registry stays the source of truth (spec.md
// §4.2); an Index is purely a cache rebuildable from it at any time, the
// same relationship core/pkg/store/ledger's SQL-backed ledgers have to
// their append log.
package registryindex

import (
	"sync"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
)

// Index accelerates membership checks for (artifact_id, kind) pairs. Every
// implementation must be safe to rebuild from scratch by replaying the
// registry file, since that replay is the only recovery path after an
// index is lost, corrupted, or simply never populated.
type Index interface {
	Contains(artifactID string, kind artifacts.Kind) (bool, error)
	Record(artifactID string, kind artifacts.Kind) error
}

// MemoryIndex is the default in-process Index: a mutex-guarded set, rebuilt
// from the registry file at process start.
type MemoryIndex struct {
	mu   sync.RWMutex
	seen map[string]bool
}

// NewMemoryIndex returns an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{seen: make(map[string]bool)}
}

func memKey(artifactID string, kind artifacts.Kind) string {
	return artifactID + "\x00" + string(kind)
}

func (m *MemoryIndex) Contains(artifactID string, kind artifacts.Kind) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seen[memKey(artifactID, kind)], nil
}

func (m *MemoryIndex) Record(artifactID string, kind artifacts.Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[memKey(artifactID, kind)] = true
	return nil
}

// Rebuild replays every record in reg into idx, in append order. Callers
// run this once at startup (or after a suspected index/registry
// divergence) rather than trusting whatever state an index was left in.
func Rebuild(idx Index, reg *artifacts.Registry) error {
	records, err := reg.Load()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := idx.Record(rec.ArtifactID, rec.Kind); err != nil {
			return err
		}
	}
	return nil
}
