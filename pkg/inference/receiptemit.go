package inference

import (
	"fmt"
	"strings"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// ReceiptResult is the "result" object of a receipt: the kind of artifact
// the request resolved to, and its id.
type ReceiptResult struct {
	Kind       string `json:"kind"` // "response" | "error"
	ArtifactID string `json:"artifact_id"`
}

// InputsSHA256 binds a receipt to the exact request and result bytes on
// disk, recomputed fresh at emit time and again at replay time — never
// trusted from stored metadata.
type InputsSHA256 struct {
	RequestSHA256 string `json:"request_sha256"`
	ResultSHA256  string `json:"result_sha256"`
}

// Receipt is the inference.receipt artifact payload. receipt_id is
// deliberately not a field here: it names the file and the registry
// artifact_id, but the payload that's hashed and persisted never carries
// it, matching inference_receipt_emit.py's base dict exactly.
type Receipt struct {
	Kind         string        `json:"kind"`
	CreatedAtUTC string        `json:"created_at_utc"`
	RequestID    string        `json:"request_id"`
	RequestHash  string        `json:"request_hash"`
	SnapshotHash string        `json:"snapshot_hash"`
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	Result       ReceiptResult `json:"result"`
	InputsSHA256 InputsSHA256  `json:"inputs_sha256"`
	ReceiptHash  string        `json:"receipt_hash"`
}

type ReceiptEmitInput struct {
	ReceiptID    string
	RequestID    string
	RequestHash  string
	SnapshotHash string
	Provider     string
	Model        string
	ResponseID   string // exactly one of ResponseID/ErrorID must be set
	ErrorID      string
	CreatedAtUTC string
}

type ReceiptEmitResult struct {
	ReceiptID string `json:"receipt_id"`
	SHA256    string `json:"sha256"`
	Path      string `json:"path"`
}

func isHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// EmitReceipt builds and persists a receipt binding request_id, the
// provider/model that served it, and a snapshot_hash to exactly one of
// response_id/error_id, failing closed if either referenced file is
// missing on disk.
func EmitReceipt(store *artifacts.Store, reg *Registry, in ReceiptEmitInput) (ReceiptEmitResult, error) {
	if strings.TrimSpace(in.ReceiptID) == "" || strings.TrimSpace(in.RequestID) == "" {
		return ReceiptEmitResult{}, fmt.Errorf("%w: receipt_id and request_id are required", errs.ErrValidation)
	}
	if !isHex64(in.RequestHash) {
		return ReceiptEmitResult{}, fmt.Errorf("%w: request_hash must be a 64-hex string", errs.ErrValidation)
	}
	if !isHex64(in.SnapshotHash) {
		return ReceiptEmitResult{}, fmt.Errorf("%w: snapshot_hash must be a 64-hex string", errs.ErrValidation)
	}
	if strings.TrimSpace(in.Provider) == "" {
		return ReceiptEmitResult{}, fmt.Errorf("%w: provider must be a non-empty string", errs.ErrValidation)
	}
	if strings.TrimSpace(in.Model) == "" {
		return ReceiptEmitResult{}, fmt.Errorf("%w: model must be a non-empty string", errs.ErrValidation)
	}
	hasResponse := strings.TrimSpace(in.ResponseID) != ""
	hasError := strings.TrimSpace(in.ErrorID) != ""
	if hasResponse == hasError {
		return ReceiptEmitResult{}, fmt.Errorf("%w: exactly one of response_id/error_id must be provided", errs.ErrValidation)
	}

	path := store.Path("receipts", in.ReceiptID+".json")

	already, err := reg.Contains(in.ReceiptID, KindReceipt)
	if err != nil {
		return ReceiptEmitResult{}, err
	}
	if already {
		sha, err := artifacts.HashFile(path)
		if err != nil {
			return ReceiptEmitResult{}, err
		}
		return ReceiptEmitResult{ReceiptID: in.ReceiptID, SHA256: sha, Path: path}, nil
	}

	requestPath := store.Path("requests", in.RequestID+".json")
	requestSHA, err := artifacts.HashFile(requestPath)
	if err != nil {
		return ReceiptEmitResult{}, err
	}

	var resultKind, resultID, resultPath string
	if hasResponse {
		resultKind, resultID = "response", in.ResponseID
		resultPath = store.Path("responses", resultID+".json")
	} else {
		resultKind, resultID = "error", in.ErrorID
		resultPath = store.Path("errors", resultID+".json")
	}
	resultSHA, err := artifacts.HashFile(resultPath)
	if err != nil {
		return ReceiptEmitResult{}, err
	}

	base := map[string]any{
		"kind":           "inference.receipt",
		"created_at_utc": in.CreatedAtUTC,
		"request_id":     in.RequestID,
		"request_hash":   in.RequestHash,
		"snapshot_hash":  in.SnapshotHash,
		"provider":       in.Provider,
		"model":          in.Model,
		"result": map[string]any{
			"kind":        resultKind,
			"artifact_id": resultID,
		},
		"inputs_sha256": map[string]any{
			"request_sha256": requestSHA,
			"result_sha256":  resultSHA,
		},
	}
	receiptHash, err := canonicalize.ContentHash(base)
	if err != nil {
		return ReceiptEmitResult{}, err
	}

	receipt := Receipt{
		Kind:         "inference.receipt",
		CreatedAtUTC: in.CreatedAtUTC,
		RequestID:    in.RequestID,
		RequestHash:  in.RequestHash,
		SnapshotHash: in.SnapshotHash,
		Provider:     in.Provider,
		Model:        in.Model,
		Result:       ReceiptResult{Kind: resultKind, ArtifactID: resultID},
		InputsSHA256: InputsSHA256{RequestSHA256: requestSHA, ResultSHA256: resultSHA},
		ReceiptHash:  receiptHash,
	}

	body, err := canonicalize.Bytes(receipt)
	if err != nil {
		return ReceiptEmitResult{}, err
	}
	if err := store.WriteFile(path, body); err != nil {
		return ReceiptEmitResult{}, err
	}

	sha := artifacts.HashBytes(body)

	if err := reg.Append(Record{
		ArtifactID:        in.ReceiptID,
		Kind:              KindReceipt,
		CreatedAtUTC:      in.CreatedAtUTC,
		SHA256:            sha,
		ByteSize:          int64(len(body)),
		MediaType:         "application/json",
		ParentArtifactIDs: []string{in.RequestID, resultID},
	}); err != nil {
		return ReceiptEmitResult{}, err
	}

	return ReceiptEmitResult{ReceiptID: in.ReceiptID, SHA256: sha, Path: path}, nil
}
