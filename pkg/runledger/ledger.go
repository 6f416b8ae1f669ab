// Package runledger implements the append-only per-run event ledger.
// Writing to it is exclusively the dispatcher's responsibility (C8); no
// tool writes to the ledger directly.
package runledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRunDir is the fallback run-ledger directory when ADAMOS_RUN_DIR is
// unset, matching spec.md §6 exactly.
const DefaultRunDir = ".adam_os/runs"

// RunDir resolves the run ledger directory from the ADAMOS_RUN_DIR
// environment variable, defaulting to DefaultRunDir.
func RunDir() string {
	if v := os.Getenv("ADAMOS_RUN_DIR"); v != "" {
		return v
	}
	return DefaultRunDir
}

// NewRunID mints a fresh run identifier. Generating a run id is the one
// explicitly permitted non-deterministic operation in this runtime.
func NewRunID() string {
	return uuid.New().String()
}

// Ledger is a single run's append-only JSONL event file, thread-safe via an
// internal mutex, with a strictly monotonically increasing sequence number
// starting at 1.
type Ledger struct {
	runID string
	path  string
	clock func() time.Time

	mu  sync.Mutex
	seq uint64
}

// New returns a Ledger for runID, writing to <dir>/<runID>.jsonl. If runID
// is empty, a fresh one is minted.
func New(dir, runID string) *Ledger {
	if runID == "" {
		runID = NewRunID()
	}
	return &Ledger{
		runID: runID,
		path:  filepath.Join(dir, runID+".jsonl"),
		clock: time.Now,
	}
}

// WithClock overrides the clock for deterministic tests.
func (l *Ledger) WithClock(clock func() time.Time) *Ledger {
	l.clock = clock
	return l
}

func (l *Ledger) RunID() string { return l.runID }
func (l *Ledger) Path() string  { return l.path }

type event struct {
	TimestampUTC string `json:"ts_utc"`
	RunID        string `json:"run_id"`
	Seq          uint64 `json:"seq"`
	Kind         string `json:"kind"`
	Data         any    `json:"data"`
}

// Event appends one ledger line with the next sequence number.
func (l *Ledger) Event(kind string, data any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	ev := event{
		TimestampUTC: l.clock().UTC().Format(time.RFC3339Nano),
		RunID:        l.runID,
		Seq:          l.seq,
		Kind:         kind,
		Data:         data,
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// Start writes a run.start event.
func (l *Ledger) Start(data any) error { return l.Event("run.start", data) }

// End writes a run.end event.
func (l *Ledger) End(data any) error { return l.Event("run.end", data) }

// Seq returns the current sequence number, mainly for tests.
func (l *Ledger) Seq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}
