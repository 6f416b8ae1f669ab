// Package inference implements C6 (the inference tool surface: request,
// response, error, and receipt emission plus execute) and the inference
// registry.
package inference

import (
	"fmt"
	"strings"

	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// Kind enumerates the allowed inference_registry "kind" values, matching
// adam_os/inference/records.py's ALLOWED_KINDS exactly.
type Kind string

const (
	KindRequest  Kind = "INFERENCE_REQUEST"
	KindResponse Kind = "INFERENCE_RESPONSE"
	KindError    Kind = "INFERENCE_ERROR"
	KindReceipt  Kind = "INFERENCE_RECEIPT"
)

var AllowedKinds = map[Kind]bool{
	KindRequest:  true,
	KindResponse: true,
	KindError:    true,
	KindReceipt:  true,
}

// Record is one line of the inference registry — deliberately kept as a
// separate file from the artifact registry (pkg/artifacts) so the two
// frozen ALLOWED_KINDS sets never need to be merged.
type Record struct {
	ArtifactID        string   `json:"artifact_id"`
	Kind              Kind     `json:"kind"`
	CreatedAtUTC      string   `json:"created_at_utc"`
	SHA256            string   `json:"sha256"`
	ByteSize          int64    `json:"byte_size"`
	MediaType         string   `json:"media_type"`
	ParentArtifactIDs []string `json:"parent_artifact_ids"`
	Notes             string   `json:"notes,omitempty"`
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.ArtifactID) == "" {
		return fmt.Errorf("%w: artifact_id is required", errs.ErrValidation)
	}
	if !AllowedKinds[r.Kind] {
		return fmt.Errorf("%w: kind %q is not allowed", errs.ErrValidation, r.Kind)
	}
	if strings.TrimSpace(r.CreatedAtUTC) == "" {
		return fmt.Errorf("%w: created_at_utc is required", errs.ErrValidation)
	}
	if !isHex64(r.SHA256) {
		return fmt.Errorf("%w: sha256 must be 64 hex characters", errs.ErrValidation)
	}
	if strings.TrimSpace(r.MediaType) == "" {
		return fmt.Errorf("%w: media_type is required", errs.ErrValidation)
	}
	return nil
}
