// Package artifacts implements the content-addressed artifact store (C3)
// and the append-only artifact registry (C2).
package artifacts

import (
	"fmt"
	"strings"

	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// Kind enumerates the allowed artifact_registry "kind" values.
type Kind string

const (
	KindRaw              Kind = "RAW"
	KindSanitized        Kind = "SANITIZED"
	KindBundleManifest   Kind = "BUNDLE_MANIFEST"
	KindBuildSpec        Kind = "BUILD_SPEC"
	KindWorkOrder        Kind = "WORK_ORDER"
	KindSnapshotArchive  Kind = "SNAPSHOT_ARCHIVE"
	KindSnapshotManifest Kind = "SNAPSHOT_MANIFEST"
)

// AllowedKinds is the frozen set of valid artifact record kinds, matching
// spec.md §3 exactly (a superset of the original Python's ALLOWED_KINDS,
// which lacked SNAPSHOT_MANIFEST; see DESIGN.md).
var AllowedKinds = map[Kind]bool{
	KindRaw:              true,
	KindSanitized:        true,
	KindBundleManifest:   true,
	KindBuildSpec:        true,
	KindWorkOrder:        true,
	KindSnapshotArchive:  true,
	KindSnapshotManifest: true,
}

// Record is one line of the artifact registry.
type Record struct {
	ArtifactID        string   `json:"artifact_id"`
	Kind              Kind     `json:"kind"`
	CreatedAtUTC      string   `json:"created_at_utc"`
	SHA256            string   `json:"sha256"`
	ByteSize          int64    `json:"byte_size"`
	MediaType         string   `json:"media_type"`
	ParentArtifactIDs []string `json:"parent_artifact_ids"`
	Notes             string   `json:"notes,omitempty"`
	Tags              []string `json:"tags,omitempty"`
}

// Validate checks the structural invariants spec.md §3 places on a record
// before it may be appended: non-empty required fields, an allowed kind, a
// 64-hex-char sha256, and no parent reference into the future (callers pass
// the set of artifact ids known to exist so far; a nil set skips that check).
func (r Record) Validate(knownIDs map[string]bool) error {
	if strings.TrimSpace(r.ArtifactID) == "" {
		return fmt.Errorf("%w: artifact_id is required", errs.ErrValidation)
	}
	if !AllowedKinds[r.Kind] {
		return fmt.Errorf("%w: kind %q is not allowed", errs.ErrValidation, r.Kind)
	}
	if strings.TrimSpace(r.CreatedAtUTC) == "" {
		return fmt.Errorf("%w: created_at_utc is required", errs.ErrValidation)
	}
	if len(r.SHA256) != 64 || !isHex(r.SHA256) {
		return fmt.Errorf("%w: sha256 must be 64 hex characters", errs.ErrValidation)
	}
	if r.ByteSize < 0 {
		return fmt.Errorf("%w: byte_size must be non-negative", errs.ErrValidation)
	}
	if strings.TrimSpace(r.MediaType) == "" {
		return fmt.Errorf("%w: media_type is required", errs.ErrValidation)
	}
	if knownIDs != nil {
		for _, p := range r.ParentArtifactIDs {
			if !knownIDs[p] {
				return fmt.Errorf("%w: parent_artifact_ids references unknown artifact %q", errs.ErrValidation, p)
			}
		}
	}
	return nil
}

func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
