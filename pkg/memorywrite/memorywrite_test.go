package memorywrite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAppendsAndReturnsNoRawContent(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "memory.jsonl")
	out, err := Write(Input{
		StorePath:    storePath,
		RecordType:   "note",
		Source:       "test",
		Text:         "remember this",
		CreatedAtUTC: "2026-02-12T00:00:00Z",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.MemoryID)
	assert.NotEmpty(t, out.RecordHash)
	assert.Equal(t, storePath, out.StorePath)

	records, err := Load(storePath)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "remember this", records[0].Text)
}

func TestWriteRejectsEmptyText(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "memory.jsonl")
	_, err := Write(Input{StorePath: storePath, RecordType: "note", CreatedAtUTC: "x"})
	require.Error(t, err)
}

func TestWriteDeterministicHashGivenSameMemoryID(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "memory.jsonl")
	in := Input{
		StorePath: storePath, RecordType: "note", Source: "s", Text: "t",
		CreatedAtUTC: "2026-02-12T00:00:00Z", MemoryID: "fixed-id",
	}
	out1, err := Write(in)
	require.NoError(t, err)
	out2, err := Write(in)
	require.NoError(t, err)
	assert.Equal(t, out1.RecordHash, out2.RecordHash)
}
