// Package config loads runtime configuration from environment variables,
// following core/pkg/config's env-with-defaults shape.
package config

import "os"

// Config holds every path and knob the dispatcher's collaborators need.
type Config struct {
	ArtifactRoot       string
	InferenceRoot      string
	RunDir             string
	EngineeringLogPath string
	RepoRoot           string
	LogLevel           string
	PolicyOverlayPath  string

	SnapshotMirrorType     string // "", "s3", "gcs"
	SnapshotMirrorBucket   string
	SnapshotMirrorRegion   string
	SnapshotMirrorEndpoint string
	SnapshotMirrorPrefix   string
}

// Load reads configuration from environment variables, applying the same
// defaults spec.md §6 names for each path.
func Load() *Config {
	return &Config{
		ArtifactRoot:       getenv("ADAMOS_ARTIFACT_ROOT", ".adam_os/artifacts"),
		InferenceRoot:      getenv("ADAMOS_INFERENCE_ROOT", ".adam_os/inference"),
		RunDir:             getenv("ADAMOS_RUN_DIR", ".adam_os/runs"),
		EngineeringLogPath: getenv("ADAMOS_ENGINEERING_LOG", ".adam_os/engineering/activity_log.jsonl"),
		RepoRoot:           getenv("ADAMOS_REPO_ROOT", "."),
		LogLevel:           getenv("ADAMOS_LOG_LEVEL", "INFO"),
		PolicyOverlayPath:  os.Getenv("ADAMOS_POLICY_FILE"),

		SnapshotMirrorType:     os.Getenv("ADAMOS_SNAPSHOT_MIRROR_TYPE"),
		SnapshotMirrorBucket:   os.Getenv("ADAMOS_SNAPSHOT_MIRROR_BUCKET"),
		SnapshotMirrorRegion:   os.Getenv("ADAMOS_SNAPSHOT_MIRROR_REGION"),
		SnapshotMirrorEndpoint: os.Getenv("ADAMOS_SNAPSHOT_MIRROR_ENDPOINT"),
		SnapshotMirrorPrefix:   os.Getenv("ADAMOS_SNAPSHOT_MIRROR_PREFIX"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
