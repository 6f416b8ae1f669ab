package inference

import (
	"fmt"
	"strings"

	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
	"github.com/marcoevans693-eng/adamos-v0/pkg/policy"
)

// RequestParams mirrors the "params" object of an inference.request.
type RequestParams struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Prompts is the "prompts" object of an inference.request: a system prompt
// (which may be empty) and a user prompt (which may not), matching
// adam_os/inference/contracts.py's build_inference_request exactly.
type Prompts struct {
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
}

// Request is the full inference.request artifact payload, grounded on
// adam_os/inference/contracts.py's build_inference_request.
type Request struct {
	Kind         string        `json:"kind"`
	RequestID    string        `json:"request_id"`
	RequestHash  string        `json:"request_hash"`
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	Params       RequestParams `json:"params"`
	Prompts      Prompts       `json:"prompts"`
	SnapshotHash string        `json:"snapshot_hash"`
	CreatedAtUTC string        `json:"created_at_utc"`
}

// BuildRequestInput carries caller-supplied fields before hashing.
type BuildRequestInput struct {
	Provider             string
	Model                string
	Temperature          float64
	MaxTokens            int
	ProviderMaxTokensCap int
	SystemPrompt         string // may be empty
	UserPrompt           string // required non-empty
	SnapshotHash         string
	CreatedAtUTC         string
	RequestID            string // optional; defaults to the computed request_hash
}

// BuildRequest validates in, enforces the policy gate, and returns a fully
// populated Request whose RequestHash is the SHA-256 of the canonical
// payload with request_hash (and request_id, when defaulted) excluded —
// matching adam_os/inference/contracts.py exactly.
func BuildRequest(gate *policy.Gate, in BuildRequestInput) (Request, error) {
	if strings.TrimSpace(in.Provider) == "" {
		return Request{}, fmt.Errorf("%w: provider is required", errs.ErrValidation)
	}
	if strings.TrimSpace(in.Model) == "" {
		return Request{}, fmt.Errorf("%w: model is required", errs.ErrValidation)
	}
	if strings.TrimSpace(in.UserPrompt) == "" {
		return Request{}, fmt.Errorf("%w: prompts.user_prompt must be a non-empty string", errs.ErrValidation)
	}
	if strings.TrimSpace(in.SnapshotHash) == "" {
		return Request{}, fmt.Errorf("%w: snapshot_hash is required", errs.ErrValidation)
	}
	if strings.TrimSpace(in.CreatedAtUTC) == "" {
		return Request{}, fmt.Errorf("%w: created_at_utc is required", errs.ErrValidation)
	}

	if err := gate.Enforce(policy.Request{
		Provider:             in.Provider,
		Model:                in.Model,
		Temperature:          in.Temperature,
		MaxTokens:            in.MaxTokens,
		ProviderMaxTokensCap: in.ProviderMaxTokensCap,
	}); err != nil {
		return Request{}, err
	}

	base := map[string]any{
		"kind":     "inference.request",
		"provider": in.Provider,
		"model":    in.Model,
		"params": map[string]any{
			"temperature": in.Temperature,
			"max_tokens":  in.MaxTokens,
		},
		"prompts": map[string]any{
			"system_prompt": in.SystemPrompt,
			"user_prompt":   in.UserPrompt,
		},
		"snapshot_hash":  in.SnapshotHash,
		"created_at_utc": in.CreatedAtUTC,
	}

	reqHash, err := canonicalize.ContentHash(base)
	if err != nil {
		return Request{}, err
	}

	requestID := strings.TrimSpace(in.RequestID)
	if requestID == "" {
		requestID = reqHash
	}

	return Request{
		Kind:         "inference.request",
		RequestID:    requestID,
		RequestHash:  reqHash,
		Provider:     in.Provider,
		Model:        in.Model,
		Params:       RequestParams{Temperature: in.Temperature, MaxTokens: in.MaxTokens},
		Prompts:      Prompts{SystemPrompt: in.SystemPrompt, UserPrompt: in.UserPrompt},
		SnapshotHash: in.SnapshotHash,
		CreatedAtUTC: in.CreatedAtUTC,
	}, nil
}
