package registryindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
)

func TestMemoryIndexRecordAndContains(t *testing.T) {
	idx := NewMemoryIndex()

	ok, err := idx.Contains("raw-1", artifacts.KindRaw)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, idx.Record("raw-1", artifacts.KindRaw))

	ok, err = idx.Contains("raw-1", artifacts.KindRaw)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = idx.Contains("raw-1", artifacts.KindSanitized)
	require.NoError(t, err)
	require.False(t, ok, "kind must be part of the identity, not just artifact_id")
}

func TestRebuildReplaysRegistryInOrder(t *testing.T) {
	dir := t.TempDir()
	reg := artifacts.NewRegistry(filepath.Join(dir, "artifact_registry.jsonl"))

	require.NoError(t, reg.Append(artifacts.Record{
		ArtifactID: "raw-1", Kind: artifacts.KindRaw, CreatedAtUTC: "2026-01-01T00:00:00Z",
		SHA256: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		ByteSize: 4, MediaType: "text/plain",
	}))
	require.NoError(t, reg.Append(artifacts.Record{
		ArtifactID: "san-1", Kind: artifacts.KindSanitized, CreatedAtUTC: "2026-01-01T00:00:00Z",
		SHA256: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		ByteSize: 4, MediaType: "text/plain",
		ParentArtifactIDs: []string{"raw-1"},
	}))

	idx := NewMemoryIndex()
	require.NoError(t, Rebuild(idx, reg))

	ok, err := idx.Contains("raw-1", artifacts.KindRaw)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = idx.Contains("san-1", artifacts.KindSanitized)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = idx.Contains("san-1", artifacts.KindRaw)
	require.NoError(t, err)
	require.False(t, ok)
}
