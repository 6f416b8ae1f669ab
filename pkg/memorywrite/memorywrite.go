// Package memorywrite implements the memory.write tool: an append-only
// memory record store. The scoring/recency read path described alongside
// it in the original system is a separate deterministic read path not on
// the governance critical path and is out of scope here (spec.md §1).
package memorywrite

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// Record is one memory store entry, grounded on adam_os/memory/records.py's
// build_memory_record shape.
type Record struct {
	MemoryID     string   `json:"memory_id"`
	RecordType   string   `json:"record_type"`
	Source       string   `json:"source"`
	Tags         []string `json:"tags,omitempty"`
	Text         string   `json:"text"`
	Refs         []string `json:"refs,omitempty"`
	CreatedAtUTC string   `json:"created_at_utc"`
	RecordHash   string   `json:"record_hash"`
}

// Input is the tool_input for memory.write.
type Input struct {
	StorePath    string
	RecordType   string
	Source       string
	Tags         []string
	Text         string
	Refs         []string
	CreatedAtUTC string
	MemoryID     string // optional; defaults to a fresh uuid
}

// Output is memory.write's side-effect-limited result: no raw content, per
// the dispatcher's memory.write ledger-receipt rule (pkg/dispatch).
type Output struct {
	MemoryID   string `json:"memory_id"`
	RecordHash string `json:"record_hash"`
	StorePath  string `json:"store_path"`
}

// Write validates in, builds a Record, and appends it to storePath as one
// canonical JSON line. This tool's side effects are limited to the store
// append only — it never writes to the run ledger itself.
func Write(in Input) (Output, error) {
	if strings.TrimSpace(in.StorePath) == "" {
		return Output{}, fmt.Errorf("%w: store_path is required", errs.ErrValidation)
	}
	if strings.TrimSpace(in.Text) == "" {
		return Output{}, fmt.Errorf("%w: text is required", errs.ErrValidation)
	}
	if strings.TrimSpace(in.RecordType) == "" {
		return Output{}, fmt.Errorf("%w: record_type is required", errs.ErrValidation)
	}

	memoryID := strings.TrimSpace(in.MemoryID)
	if memoryID == "" {
		memoryID = uuid.New().String()
	}

	fields := map[string]any{
		"memory_id":      memoryID,
		"record_type":    in.RecordType,
		"source":         in.Source,
		"tags":           in.Tags,
		"text":           in.Text,
		"refs":           in.Refs,
		"created_at_utc": in.CreatedAtUTC,
	}
	recordHash, err := canonicalize.HashFields(fields)
	if err != nil {
		return Output{}, err
	}

	record := Record{
		MemoryID:     memoryID,
		RecordType:   in.RecordType,
		Source:       in.Source,
		Tags:         in.Tags,
		Text:         in.Text,
		Refs:         in.Refs,
		CreatedAtUTC: in.CreatedAtUTC,
		RecordHash:   recordHash,
	}

	if err := appendRecord(in.StorePath, record); err != nil {
		return Output{}, err
	}

	return Output{MemoryID: memoryID, RecordHash: recordHash, StorePath: in.StorePath}, nil
}

func appendRecord(storePath string, record Record) error {
	line, err := canonicalize.Bytes(record)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(storePath), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(storePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// Load reads every record from storePath in append order, used only by
// tests and offline tooling — never by the write path itself.
func Load(storePath string) ([]Record, error) {
	f, err := os.Open(storePath)
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
			return nil, err
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}
