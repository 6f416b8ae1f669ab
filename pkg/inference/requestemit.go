package inference

import (
	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
)

// RequestEmitInput is the tool_input for inference.request_emit.
type RequestEmitInput struct {
	Request Request
	Layout  artifacts.Layout
}

// RequestEmitResult is the descriptor returned whether the request was
// freshly written or already existed — idempotent re-invocation returns the
// same descriptor without appending again.
type RequestEmitResult struct {
	RequestID string `json:"request_id"`
	SHA256    string `json:"sha256"`
	Path      string `json:"path"`
}

// EmitRequest persists req to <root>/requests/<request_id>.json and appends
// an INFERENCE_REQUEST record, unless one already exists for request_id.
func EmitRequest(store *artifacts.Store, reg *Registry, createdAtUTC string, in RequestEmitInput) (RequestEmitResult, error) {
	path := store.Path("requests", in.Request.RequestID+".json")

	already, err := reg.Contains(in.Request.RequestID, KindRequest)
	if err != nil {
		return RequestEmitResult{}, err
	}
	if already {
		sha, err := artifacts.HashFile(path)
		if err != nil {
			return RequestEmitResult{}, err
		}
		return RequestEmitResult{RequestID: in.Request.RequestID, SHA256: sha, Path: path}, nil
	}

	body, err := canonicalize.Bytes(in.Request)
	if err != nil {
		return RequestEmitResult{}, err
	}
	if err := store.WriteFile(path, body); err != nil {
		return RequestEmitResult{}, err
	}

	sha := artifacts.HashBytes(body)
	size := int64(len(body))

	if err := reg.Append(Record{
		ArtifactID:   in.Request.RequestID,
		Kind:         KindRequest,
		CreatedAtUTC: createdAtUTC,
		SHA256:       sha,
		ByteSize:     size,
		MediaType:    "application/json",
	}); err != nil {
		return RequestEmitResult{}, err
	}

	return RequestEmitResult{RequestID: in.Request.RequestID, SHA256: sha, Path: path}, nil
}
