package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marcoevans693-eng/adamos-v0/pkg/policy"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ADAMOS_ARTIFACT_ROOT", "ADAMOS_INFERENCE_ROOT", "ADAMOS_RUN_DIR",
		"ADAMOS_ENGINEERING_LOG", "ADAMOS_REPO_ROOT", "ADAMOS_LOG_LEVEL", "ADAMOS_POLICY_FILE",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()
	require.Equal(t, ".adam_os/artifacts", cfg.ArtifactRoot)
	require.Equal(t, ".adam_os/inference", cfg.InferenceRoot)
	require.Equal(t, ".adam_os/runs", cfg.RunDir)
	require.Equal(t, "INFO", cfg.LogLevel)
	require.Empty(t, cfg.PolicyOverlayPath)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("ADAMOS_ARTIFACT_ROOT", "/tmp/custom-artifacts")
	t.Setenv("ADAMOS_LOG_LEVEL", "DEBUG")

	cfg := Load()
	require.Equal(t, "/tmp/custom-artifacts", cfg.ArtifactRoot)
	require.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestBuildGateWithoutOverlayAllowsDefault(t *testing.T) {
	cfg := Load()
	gate, err := cfg.BuildGate()
	require.NoError(t, err)
	require.NotNil(t, gate)
}

func TestBuildGateWithOverlayNarrows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("allowed_models:\n  openai:\n    - gpt-4.1-mini\n"), 0o644))

	cfg := &Config{PolicyOverlayPath: path}
	gate, err := cfg.BuildGate()
	require.NoError(t, err)
	require.NotNil(t, gate)
	require.Error(t, gate.Enforce(policy.Request{Provider: "openai", Model: "gpt-4o", Temperature: 0, MaxTokens: 32, ProviderMaxTokensCap: 8192}))
	require.NoError(t, gate.Enforce(policy.Request{Provider: "openai", Model: "gpt-4.1-mini", Temperature: 0, MaxTokens: 32, ProviderMaxTokensCap: 8192}))
}

func TestBuildGateWithMalformedOverlayErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":::not yaml:::"), 0o644))

	cfg := &Config{PolicyOverlayPath: path}
	_, err := cfg.BuildGate()
	require.Error(t, err)
}

func TestBuildSnapshotMirrorDefaultIsNil(t *testing.T) {
	cfg := &Config{}
	mirror, err := cfg.BuildSnapshotMirror(context.Background())
	require.NoError(t, err)
	require.Nil(t, mirror)
}

func TestBuildSnapshotMirrorUnsupportedTypeErrors(t *testing.T) {
	cfg := &Config{SnapshotMirrorType: "azure"}
	_, err := cfg.BuildSnapshotMirror(context.Background())
	require.Error(t, err)
}

func TestBuildSnapshotMirrorS3RequiresBucket(t *testing.T) {
	cfg := &Config{SnapshotMirrorType: "s3"}
	_, err := cfg.BuildSnapshotMirror(context.Background())
	require.Error(t, err)
}
