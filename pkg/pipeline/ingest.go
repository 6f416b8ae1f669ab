// Package pipeline implements C4: the deterministic artifact pipeline
// stages — ingest, sanitize, canon_select, bundle_manifest, build_spec,
// work_order_emit, and snapshot_export. Every stage is idempotent:
// re-invocation with identical inputs is a no-op that returns the
// precomputed descriptor without appending to the registry again.
package pipeline

import (
	"strings"

	"github.com/google/uuid"
	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
)

// IngestInput is the tool_input for artifact.ingest.
type IngestInput struct {
	Text         string
	CreatedAtUTC string
	ArtifactID   string // optional; defaults to a fresh uuid — the one
	// explicitly permitted non-deterministic operation besides run_id minting
}

// IngestResult is artifact.ingest's descriptor.
type IngestResult struct {
	ArtifactID string `json:"artifact_id"`
	SHA256     string `json:"sha256"`
	Path       string `json:"path"`
}

// Ingest writes in.Text verbatim to <root>/raw/<artifact_id>.txt and
// registers a RAW artifact record, unless one already exists for that id.
func Ingest(store *artifacts.Store, reg *artifacts.Registry, in IngestInput) (IngestResult, error) {
	artifactID := strings.TrimSpace(in.ArtifactID)
	if artifactID == "" {
		artifactID = uuid.New().String()
	}

	path := store.Path("raw", artifactID+".txt")

	already, err := reg.Contains(artifactID, artifacts.KindRaw)
	if err != nil {
		return IngestResult{}, err
	}
	if already {
		sha, err := artifacts.HashFile(path)
		if err != nil {
			return IngestResult{}, err
		}
		return IngestResult{ArtifactID: artifactID, SHA256: sha, Path: path}, nil
	}

	body := []byte(in.Text)
	if err := store.WriteFile(path, body); err != nil {
		return IngestResult{}, err
	}

	sha := artifacts.HashBytes(body)

	if err := reg.Append(artifacts.Record{
		ArtifactID:   artifactID,
		Kind:         artifacts.KindRaw,
		CreatedAtUTC: in.CreatedAtUTC,
		SHA256:       sha,
		ByteSize:     int64(len(body)),
		MediaType:    "text/plain",
		Notes:        "ingest",
	}); err != nil {
		return IngestResult{}, err
	}

	return IngestResult{ArtifactID: artifactID, SHA256: sha, Path: path}, nil
}
