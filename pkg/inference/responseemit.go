package inference

import (
	"fmt"
	"strings"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// Response is the inference.response artifact payload. output_text is kept
// scalar-only per spec.md's open question decision — no structured
// tool-call modeling.
type Response struct {
	Kind         string `json:"kind"`
	ResponseID   string `json:"response_id"`
	RequestID    string `json:"request_id"`
	OutputText   string `json:"output_text"`
	CreatedAtUTC string `json:"created_at_utc"`
}

type ResponseEmitResult struct {
	ResponseID string `json:"response_id"`
	SHA256     string `json:"sha256"`
	Path       string `json:"path"`
}

// EmitResponse persists resp to <root>/responses/<response_id>.json and
// appends an INFERENCE_RESPONSE record whose parent is request_id, unless
// one already exists.
func EmitResponse(store *artifacts.Store, reg *Registry, createdAtUTC string, resp Response) (ResponseEmitResult, error) {
	if strings.TrimSpace(resp.ResponseID) == "" || strings.TrimSpace(resp.RequestID) == "" {
		return ResponseEmitResult{}, fmt.Errorf("%w: response_id and request_id are required", errs.ErrValidation)
	}

	path := store.Path("responses", resp.ResponseID+".json")

	already, err := reg.Contains(resp.ResponseID, KindResponse)
	if err != nil {
		return ResponseEmitResult{}, err
	}
	if already {
		sha, err := artifacts.HashFile(path)
		if err != nil {
			return ResponseEmitResult{}, err
		}
		return ResponseEmitResult{ResponseID: resp.ResponseID, SHA256: sha, Path: path}, nil
	}

	body, err := canonicalize.Bytes(resp)
	if err != nil {
		return ResponseEmitResult{}, err
	}
	if err := store.WriteFile(path, body); err != nil {
		return ResponseEmitResult{}, err
	}

	sha := artifacts.HashBytes(body)

	if err := reg.Append(Record{
		ArtifactID:        resp.ResponseID,
		Kind:              KindResponse,
		CreatedAtUTC:      createdAtUTC,
		SHA256:            sha,
		ByteSize:          int64(len(body)),
		MediaType:         "application/json",
		ParentArtifactIDs: []string{resp.RequestID},
	}); err != nil {
		return ResponseEmitResult{}, err
	}

	return ResponseEmitResult{ResponseID: resp.ResponseID, SHA256: sha, Path: path}, nil
}
