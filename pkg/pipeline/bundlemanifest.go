package pipeline

import (
	"fmt"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// ResolveLineage walks only the first parent of each artifact starting at
// id and returns the chain in root -> leaf order, matching
// adam_os/tools/artifact_bundle_manifest.py's _resolve_lineage exactly: it
// walks leaf -> root following parent_artifact_ids[0], then reverses. A
// multi-parent topological walk is left as a future open question (spec.md
// §9, recorded in DESIGN.md). Cycles raise an error.
func ResolveLineage(reg *artifacts.Registry, id string) ([]string, error) {
	records, err := reg.Load()
	if err != nil {
		return nil, err
	}
	byID := recordsByID(records)
	return resolveLineageChain(byID, id)
}

func recordsByID(records []artifacts.Record) map[string]artifacts.Record {
	byID := make(map[string]artifacts.Record, len(records))
	for _, r := range records {
		if _, exists := byID[r.ArtifactID]; !exists {
			byID[r.ArtifactID] = r
		}
	}
	return byID
}

func resolveLineageChain(byID map[string]artifacts.Record, id string) ([]string, error) {
	var chain []string
	seen := make(map[string]bool)
	current := id
	for current != "" {
		if seen[current] {
			return nil, fmt.Errorf("%w: cycle detected in parent_artifact_ids at %s", errs.ErrValidation, current)
		}
		seen[current] = true
		chain = append(chain, current)

		rec, ok := byID[current]
		if !ok || len(rec.ParentArtifactIDs) == 0 {
			break
		}
		current = rec.ParentArtifactIDs[0]
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Member is one lineage entry in a bundle manifest's members array.
type Member struct {
	ArtifactID string `json:"artifact_id"`
	SHA256     string `json:"sha256"`
	ByteSize   int64  `json:"byte_size"`
	Kind       string `json:"kind"`
}

func membersFromChain(byID map[string]artifacts.Record, chain []string) ([]Member, error) {
	members := make([]Member, 0, len(chain))
	seen := make(map[string]bool)
	for _, id := range chain {
		if seen[id] {
			continue
		}
		seen[id] = true
		rec, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: artifact_id not found in registry: %s", errs.ErrValidation, id)
		}
		members = append(members, Member{
			ArtifactID: rec.ArtifactID,
			SHA256:     rec.SHA256,
			ByteSize:   rec.ByteSize,
			Kind:       string(rec.Kind),
		})
	}
	return members, nil
}

// Manifest is the bundle_manifest JSON payload.
type Manifest struct {
	BundleID     string   `json:"bundle_id"`
	Kind         string   `json:"kind"`
	CreatedAtUTC string   `json:"created_at_utc"`
	Members      []Member `json:"members"`
	BundleHash   string   `json:"bundle_hash"`
}

type BundleManifestInput struct {
	CanonArtifactID string
	CreatedAtUTC    string
	ArtifactID      string // optional
}

type BundleManifestResult struct {
	ArtifactID string `json:"artifact_id"`
	SHA256     string `json:"sha256"`
	Path       string `json:"path"`
}

// BundleManifest resolves the first-parent lineage of canonArtifactID in
// root-to-leaf order, builds the de-duplicated members list, binds the
// result with bundle_hash (a content hash of the payload computed before
// the hash field itself is added), and writes the manifest to
// <root>/bundles/<id>.json, registering it with kind=BUNDLE_MANIFEST
// (media_type application/json, distinguishing it from canon_select's
// application/x-ndjson output of the same kind).
func BundleManifest(store *artifacts.Store, reg *artifacts.Registry, in BundleManifestInput) (BundleManifestResult, error) {
	artifactID := deriveChildID(in.ArtifactID, in.CanonArtifactID, "bundle")
	path := store.Path("bundles", artifactID+".json")

	already, err := reg.Contains(artifactID, artifacts.KindBundleManifest)
	if err != nil {
		return BundleManifestResult{}, err
	}
	if already {
		sha, err := artifacts.HashFile(path)
		if err != nil {
			return BundleManifestResult{}, err
		}
		return BundleManifestResult{ArtifactID: artifactID, SHA256: sha, Path: path}, nil
	}

	records, err := reg.Load()
	if err != nil {
		return BundleManifestResult{}, err
	}
	byID := recordsByID(records)

	chain, err := resolveLineageChain(byID, in.CanonArtifactID)
	if err != nil {
		return BundleManifestResult{}, err
	}
	members, err := membersFromChain(byID, chain)
	if err != nil {
		return BundleManifestResult{}, err
	}

	hashPayload := map[string]any{
		"bundle_id":      artifactID,
		"kind":           "BUNDLE_MANIFEST",
		"created_at_utc": in.CreatedAtUTC,
		"members":        members,
	}
	bundleHash, err := canonicalize.ContentHash(hashPayload)
	if err != nil {
		return BundleManifestResult{}, err
	}

	manifest := Manifest{
		BundleID:     artifactID,
		Kind:         "BUNDLE_MANIFEST",
		CreatedAtUTC: in.CreatedAtUTC,
		Members:      members,
		BundleHash:   bundleHash,
	}

	body, err := canonicalize.Bytes(manifest)
	if err != nil {
		return BundleManifestResult{}, err
	}
	if err := store.WriteFile(path, body); err != nil {
		return BundleManifestResult{}, err
	}

	sha := artifacts.HashBytes(body)

	if err := reg.Append(artifacts.Record{
		ArtifactID:        artifactID,
		Kind:              artifacts.KindBundleManifest,
		CreatedAtUTC:      in.CreatedAtUTC,
		SHA256:            sha,
		ByteSize:          int64(len(body)),
		MediaType:         "application/json",
		ParentArtifactIDs: []string{in.CanonArtifactID},
		Notes:             "bundle_manifest",
	}); err != nil {
		return BundleManifestResult{}, err
	}

	return BundleManifestResult{ArtifactID: artifactID, SHA256: sha, Path: path}, nil
}
