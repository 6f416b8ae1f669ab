package dispatch

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/policy"
)

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	repoRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "readme.txt"), []byte("hello"), 0o644))

	artifactRoot := t.TempDir()
	infRoot := t.TempDir()
	runDir := t.TempDir()

	return &Env{
		ArtifactStore:      artifacts.NewStore(artifactRoot),
		ArtifactReg:        artifacts.NewRegistry(artifacts.NewLayout(artifactRoot).RegistryPath()),
		InfStore:           artifacts.NewStore(infRoot),
		Gate:               policy.New(),
		RepoRoot:           repoRoot,
		EngineeringLogPath: filepath.Join(artifactRoot, "engineering", "activity_log.jsonl"),
		RunDir:             runDir,
		JWTSecret:          []byte("test-secret"),
		Clock:              func() time.Time { return time.Unix(1700000000, 0) },
	}
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
	}
	return n
}

func TestDispatchRepoListFilesWritesFullLedgerCycle(t *testing.T) {
	env := newTestEnv(t)

	result, err := Dispatch(context.Background(), env, "repo.list_files", nil, "")
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)

	files, ok := result.Output.([]string)
	require.True(t, ok)
	require.Contains(t, files, "readme.txt")

	ledgerPath := filepath.Join(env.RunDir, result.RunID+".jsonl")
	require.Equal(t, 6, countLines(t, ledgerPath)) // start, trust.pre_snapshot, tool.result, trust.post_snapshot, trust.classification, end
}

func TestDispatchUnknownToolStillClosesRun(t *testing.T) {
	env := newTestEnv(t)

	result, err := Dispatch(context.Background(), env, "no.such.tool", nil, "")
	require.Error(t, err)
	require.NotEmpty(t, result.RunID)

	ledgerPath := filepath.Join(env.RunDir, result.RunID+".jsonl")
	require.Equal(t, 6, countLines(t, ledgerPath))
}

func TestDispatchMemoryWriteEmitsReceiptEvent(t *testing.T) {
	env := newTestEnv(t)
	storePath := filepath.Join(t.TempDir(), "memory.jsonl")

	result, err := Dispatch(context.Background(), env, "memory.write", toolInput{
		"store_path":     storePath,
		"record_type":    "note",
		"text":           "the sky is blue",
		"created_at_utc": "2026-02-12T00:00:00Z",
	}, "")
	require.NoError(t, err)

	ledgerPath := filepath.Join(env.RunDir, result.RunID+".jsonl")
	// start, trust.pre_snapshot, tool.result, memory.write_receipt,
	// trust.post_snapshot, trust.classification, end
	require.Equal(t, 7, countLines(t, ledgerPath))
}

func TestDispatchReusesSuppliedRunID(t *testing.T) {
	env := newTestEnv(t)

	result1, err := Dispatch(context.Background(), env, "repo.list_files", nil, "fixed-run")
	require.NoError(t, err)
	require.Equal(t, "fixed-run", result1.RunID)

	result2, err := Dispatch(context.Background(), env, "repo.list_files", nil, "fixed-run")
	require.NoError(t, err)
	require.Equal(t, "fixed-run", result2.RunID)

	ledgerPath := filepath.Join(env.RunDir, "fixed-run.jsonl")
	require.Equal(t, 12, countLines(t, ledgerPath))
}
