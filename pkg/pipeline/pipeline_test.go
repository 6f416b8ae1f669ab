package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
)

func newTestPipeline(t *testing.T) (*artifacts.Store, *artifacts.Registry) {
	t.Helper()
	root := t.TempDir()
	store := artifacts.NewStore(root)
	reg := artifacts.NewRegistry(artifacts.NewLayout(root).RegistryPath())
	return store, reg
}

func readStatements(t *testing.T, path string) []Statement {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []Statement
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		if line == "" {
			continue
		}
		var s Statement
		require.NoError(t, json.Unmarshal([]byte(line), &s))
		out = append(out, s)
	}
	return out
}

// TestIngestSanitizeCanonDeterminism covers the ingest-to-canon scenario:
// three statements split and classified SOURCE-BASED/QUESTION/ASSUMPTION,
// CANON containing exactly the first SOURCE-BASED line, and idempotent
// re-invocation appending nothing new to the registry.
func TestIngestSanitizeCanonDeterminism(t *testing.T) {
	store, reg := newTestPipeline(t)
	const ts = "2026-02-12T00:00:00Z"

	ingestRes, err := Ingest(store, reg, IngestInput{
		Text: "The sky is blue. What is gamma? Probably tomorrow.", CreatedAtUTC: ts, ArtifactID: "raw-1",
	})
	require.NoError(t, err)

	sanitizeRes, err := Sanitize(store, reg, SanitizeInput{RawArtifactID: ingestRes.ArtifactID, CreatedAtUTC: ts})
	require.NoError(t, err)

	statements := readStatements(t, sanitizeRes.Path)
	require.Len(t, statements, 3)
	require.Equal(t, ClassSourceBased, statements[0].Classification)
	require.Equal(t, "The sky is blue.", statements[0].Text)
	require.Equal(t, ClassQuestion, statements[1].Classification)
	require.Equal(t, ClassAssumption, statements[2].Classification)

	canonRes, err := CanonSelect(store, reg, CanonSelectInput{SanitizedArtifactID: sanitizeRes.ArtifactID, CreatedAtUTC: ts})
	require.NoError(t, err)

	canonBody, err := os.ReadFile(canonRes.Path)
	require.NoError(t, err)
	var chosen canonLine
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(canonBody))), &chosen))
	require.Equal(t, "The sky is blue.", chosen.Text)
	require.Equal(t, string(ClassSourceBased), chosen.Type)

	before, err := os.ReadFile(artifacts.NewLayout(store.Root()).RegistryPath())
	require.NoError(t, err)

	// re-run every stage with identical inputs; nothing new should append
	_, err = Ingest(store, reg, IngestInput{Text: "The sky is blue. What is gamma? Probably tomorrow.", CreatedAtUTC: ts, ArtifactID: "raw-1"})
	require.NoError(t, err)
	_, err = Sanitize(store, reg, SanitizeInput{RawArtifactID: ingestRes.ArtifactID, CreatedAtUTC: ts})
	require.NoError(t, err)
	_, err = CanonSelect(store, reg, CanonSelectInput{SanitizedArtifactID: sanitizeRes.ArtifactID, CreatedAtUTC: ts})
	require.NoError(t, err)

	after, err := os.ReadFile(artifacts.NewLayout(store.Root()).RegistryPath())
	require.NoError(t, err)
	require.Equal(t, len(before), len(after))
}

// TestFullPipelineToWorkOrder covers the full ingest-through-work-order
// scenario and checks the work order hash binds to the on-disk build spec
// bytes, then verifies a full re-run appends nothing.
func TestFullPipelineToWorkOrder(t *testing.T) {
	store, reg := newTestPipeline(t)
	const ts = "2026-02-12T00:00:00Z"

	ingestRes, err := Ingest(store, reg, IngestInput{
		Text: "Alpha fact. Beta maybe. What is Gamma?", CreatedAtUTC: ts, ArtifactID: "raw-2",
	})
	require.NoError(t, err)

	sanitizeRes, err := Sanitize(store, reg, SanitizeInput{RawArtifactID: ingestRes.ArtifactID, CreatedAtUTC: ts})
	require.NoError(t, err)

	canonRes, err := CanonSelect(store, reg, CanonSelectInput{SanitizedArtifactID: sanitizeRes.ArtifactID, CreatedAtUTC: ts})
	require.NoError(t, err)
	canonBody, err := os.ReadFile(canonRes.Path)
	require.NoError(t, err)
	var chosen canonLine
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(canonBody))), &chosen))
	require.Equal(t, "Alpha fact.", chosen.Text)

	bundleRes, err := BundleManifest(store, reg, BundleManifestInput{CanonArtifactID: canonRes.ArtifactID, CreatedAtUTC: ts})
	require.NoError(t, err)

	specRes, err := BuildSpec(store, reg, BuildSpecInput{
		BundleManifestID: bundleRes.ArtifactID, CreatedAtUTC: ts, Provider: "test-provider", Model: "test-model",
	})
	require.NoError(t, err)

	workOrderRes, err := WorkOrderEmit(store, reg, WorkOrderEmitInput{BuildSpecID: specRes.ArtifactID, CreatedAtUTC: ts})
	require.NoError(t, err)

	body, err := os.ReadFile(workOrderRes.Path)
	require.NoError(t, err)
	var order WorkOrder
	require.NoError(t, json.Unmarshal(body, &order))
	require.Equal(t, specRes.SHA256, order.Lineage.BuildSpecSHA256)
	require.Len(t, order.WorkOrderHash, 64)

	lineage, err := ResolveLineage(reg, canonRes.ArtifactID)
	require.NoError(t, err)
	require.Equal(t, []string{ingestRes.ArtifactID, sanitizeRes.ArtifactID, canonRes.ArtifactID}, lineage)

	before, err := os.ReadFile(artifacts.NewLayout(store.Root()).RegistryPath())
	require.NoError(t, err)

	_, err = Ingest(store, reg, IngestInput{Text: "Alpha fact. Beta maybe. What is Gamma?", CreatedAtUTC: ts, ArtifactID: "raw-2"})
	require.NoError(t, err)
	_, err = Sanitize(store, reg, SanitizeInput{RawArtifactID: ingestRes.ArtifactID, CreatedAtUTC: ts})
	require.NoError(t, err)
	_, err = CanonSelect(store, reg, CanonSelectInput{SanitizedArtifactID: sanitizeRes.ArtifactID, CreatedAtUTC: ts})
	require.NoError(t, err)
	_, err = BundleManifest(store, reg, BundleManifestInput{CanonArtifactID: canonRes.ArtifactID, CreatedAtUTC: ts})
	require.NoError(t, err)
	_, err = BuildSpec(store, reg, BuildSpecInput{
		BundleManifestID: bundleRes.ArtifactID, CreatedAtUTC: ts, Provider: "test-provider", Model: "test-model",
	})
	require.NoError(t, err)
	_, err = WorkOrderEmit(store, reg, WorkOrderEmitInput{BuildSpecID: specRes.ArtifactID, CreatedAtUTC: ts})
	require.NoError(t, err)

	after, err := os.ReadFile(artifacts.NewLayout(store.Root()).RegistryPath())
	require.NoError(t, err)
	require.Equal(t, len(before), len(after))
}

// TestSnapshotExportDeterministicAndIdempotent covers C4's final stage: the
// plaintext archive hash is stable across runs with identical source
// contents, the manifest carries the encryption scheme tag, and re-export
// with the same snapshot id appends nothing further.
func TestSnapshotExportDeterministicAndIdempotent(t *testing.T) {
	store, reg := newTestPipeline(t)
	const ts = "2026-02-12T00:00:00Z"

	ingestRes, err := Ingest(store, reg, IngestInput{Text: "Alpha fact.", CreatedAtUTC: ts, ArtifactID: "raw-3"})
	require.NoError(t, err)

	sourceRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(sourceRoot, "a.txt"), []byte("hello"), 0o644))

	res1, err := SnapshotExport(context.Background(), store, reg, SnapshotExportInput{
		WorkOrderID: ingestRes.ArtifactID, SourceRoot: sourceRoot, Passphrase: "correct horse", CreatedAtUTC: ts,
	})
	require.NoError(t, err)
	require.Len(t, res1.ArchiveSHA256, 64)

	manifestBody, err := os.ReadFile(res1.ManifestPath)
	require.NoError(t, err)
	var manifest SnapshotManifest
	require.NoError(t, json.Unmarshal(manifestBody, &manifest))
	require.Equal(t, EncryptionScheme, manifest.EncryptionScheme)
	require.Len(t, manifest.PlaintextSHA256, 64)

	before, err := os.ReadFile(artifacts.NewLayout(store.Root()).RegistryPath())
	require.NoError(t, err)

	res2, err := SnapshotExport(context.Background(), store, reg, SnapshotExportInput{
		WorkOrderID: ingestRes.ArtifactID, SourceRoot: sourceRoot, Passphrase: "correct horse", CreatedAtUTC: ts,
		SnapshotID: res1.SnapshotID,
	})
	require.NoError(t, err)
	require.Equal(t, res1.ArchiveSHA256, res2.ArchiveSHA256)
	require.Equal(t, res1.ManifestSHA256, res2.ManifestSHA256)

	after, err := os.ReadFile(artifacts.NewLayout(store.Root()).RegistryPath())
	require.NoError(t, err)
	require.Equal(t, len(before), len(after))

	// a fresh export under a new snapshot id re-tars the same source bytes
	res3, err := SnapshotExport(context.Background(), store, reg, SnapshotExportInput{
		WorkOrderID: ingestRes.ArtifactID, SourceRoot: sourceRoot, Passphrase: "correct horse", CreatedAtUTC: ts,
		SnapshotID: "raw-3--snapshot-second",
	})
	require.NoError(t, err)
	manifestBody3, err := os.ReadFile(res3.ManifestPath)
	require.NoError(t, err)
	var manifest3 SnapshotManifest
	require.NoError(t, json.Unmarshal(manifestBody3, &manifest3))
	require.Equal(t, manifest.PlaintextSHA256, manifest3.PlaintextSHA256)
}
