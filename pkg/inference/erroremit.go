package inference

import (
	"fmt"
	"strings"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// InferenceError is the inference.error artifact payload. ErrorType is one
// of "provider_http_error" or "inference_execute_error", matching
// spec.md §7's normalized error taxonomy.
type InferenceError struct {
	Kind         string `json:"kind"`
	ErrorID      string `json:"error_id"`
	RequestID    string `json:"request_id"`
	ErrorType    string `json:"error_type"`
	Message      string `json:"message"`
	CreatedAtUTC string `json:"created_at_utc"`
}

type ErrorEmitResult struct {
	ErrorID string `json:"error_id"`
	SHA256  string `json:"sha256"`
	Path    string `json:"path"`
}

// EmitError persists ie to <root>/errors/<error_id>.json and appends an
// INFERENCE_ERROR record whose parent is request_id, unless one already
// exists.
func EmitError(store *artifacts.Store, reg *Registry, createdAtUTC string, ie InferenceError) (ErrorEmitResult, error) {
	if strings.TrimSpace(ie.ErrorID) == "" || strings.TrimSpace(ie.RequestID) == "" {
		return ErrorEmitResult{}, fmt.Errorf("%w: error_id and request_id are required", errs.ErrValidation)
	}

	path := store.Path("errors", ie.ErrorID+".json")

	already, err := reg.Contains(ie.ErrorID, KindError)
	if err != nil {
		return ErrorEmitResult{}, err
	}
	if already {
		sha, err := artifacts.HashFile(path)
		if err != nil {
			return ErrorEmitResult{}, err
		}
		return ErrorEmitResult{ErrorID: ie.ErrorID, SHA256: sha, Path: path}, nil
	}

	body, err := canonicalize.Bytes(ie)
	if err != nil {
		return ErrorEmitResult{}, err
	}
	if err := store.WriteFile(path, body); err != nil {
		return ErrorEmitResult{}, err
	}

	sha := artifacts.HashBytes(body)

	if err := reg.Append(Record{
		ArtifactID:        ie.ErrorID,
		Kind:              KindError,
		CreatedAtUTC:      createdAtUTC,
		SHA256:            sha,
		ByteSize:          int64(len(body)),
		MediaType:         "application/json",
		ParentArtifactIDs: []string{ie.RequestID},
	}); err != nil {
		return ErrorEmitResult{}, err
	}

	return ErrorEmitResult{ErrorID: ie.ErrorID, SHA256: sha, Path: path}, nil
}
