package pipeline

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// CanonSelectInput is the tool_input for artifact.canon_select.
type CanonSelectInput struct {
	SanitizedArtifactID string
	CreatedAtUTC        string
	ArtifactID          string // optional
}

type CanonSelectResult struct {
	ArtifactID string `json:"artifact_id"`
	SHA256     string `json:"sha256"`
	Path       string `json:"path"`
}

// canonLine is the persisted shape of one selected statement: just its
// type (always SOURCE-BASED, since that's all CanonSelect keeps) and text,
// matching artifact_canon_select.py's output exactly.
type canonLine struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CanonSelect reads the SANITIZED artifact and writes every SOURCE-BASED
// statement, in order, as one-line-per-statement NDJSON to
// <root>/bundles/<id>.jsonl. Registered with kind=BUNDLE_MANIFEST rather
// than a distinct CANON_SELECTION kind — see DESIGN.md's Open Question 1
// decision, which follows spec.md's own §3 ALLOWED_KINDS set literally.
func CanonSelect(store *artifacts.Store, reg *artifacts.Registry, in CanonSelectInput) (CanonSelectResult, error) {
	artifactID := deriveChildID(in.ArtifactID, in.SanitizedArtifactID, "canon")
	path := store.Path("bundles", artifactID+".jsonl")

	already, err := reg.Contains(artifactID, artifacts.KindBundleManifest)
	if err != nil {
		return CanonSelectResult{}, err
	}
	if already {
		sha, err := artifacts.HashFile(path)
		if err != nil {
			return CanonSelectResult{}, err
		}
		return CanonSelectResult{ArtifactID: artifactID, SHA256: sha, Path: path}, nil
	}

	sanitizedPath := store.Path("sanitized", in.SanitizedArtifactID+".jsonl")
	raw, err := store.ReadFile(sanitizedPath)
	if err != nil {
		return CanonSelectResult{}, err
	}

	var selected []canonLine
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var s Statement
		if err := json.Unmarshal(line, &s); err != nil {
			return CanonSelectResult{}, fmt.Errorf("%w: malformed sanitized line: %v", errs.ErrValidation, err)
		}
		if s.Classification == ClassSourceBased {
			selected = append(selected, canonLine{Type: string(ClassSourceBased), Text: s.Text})
		}
	}
	if err := scanner.Err(); err != nil {
		return CanonSelectResult{}, err
	}
	if len(selected) == 0 {
		return CanonSelectResult{}, fmt.Errorf("%w: no SOURCE-BASED statement found in %s", errs.ErrValidation, in.SanitizedArtifactID)
	}

	var body []byte
	for _, s := range selected {
		line, err := canonicalize.Bytes(s)
		if err != nil {
			return CanonSelectResult{}, err
		}
		body = append(body, line...)
		body = append(body, '\n')
	}

	if err := store.WriteFile(path, body); err != nil {
		return CanonSelectResult{}, err
	}

	sha := artifacts.HashBytes(body)

	if err := reg.Append(artifacts.Record{
		ArtifactID:        artifactID,
		Kind:              artifacts.KindBundleManifest,
		CreatedAtUTC:      in.CreatedAtUTC,
		SHA256:            sha,
		ByteSize:          int64(len(body)),
		MediaType:         "application/x-ndjson",
		ParentArtifactIDs: []string{in.SanitizedArtifactID},
		Notes:             "canon_select",
	}); err != nil {
		return CanonSelectResult{}, err
	}

	return CanonSelectResult{ArtifactID: artifactID, SHA256: sha, Path: path}, nil
}
