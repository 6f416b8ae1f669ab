// Package replay implements C7: a strictly read-only verifier that
// recomputes and compares hashes from a receipt, never mutating any file
// or registry.
package replay

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
	"github.com/marcoevans693-eng/adamos-v0/pkg/inference"
)

// Result is returned on successful replay, matching spec.md §4.7's success
// shape exactly.
type Result struct {
	Status        string `json:"status"`
	ReceiptID     string `json:"receipt_id"`
	RequestSHA256 string `json:"request_sha256"`
	ResultSHA256  string `json:"result_sha256"`
	ReceiptHash   string `json:"receipt_hash"`
}

// Verify implements the 5-step read-only replay algorithm from spec.md
// §4.7 / adam_os/tools/inference_replay.py:
//  1. load the receipt at receiptID and validate kind + a 64-hex receipt_hash
//  2. resolve request_id and result.kind/result.artifact_id, validating both
//     referenced files exist on disk
//  3. recompute file hashes and compare to the receipt's stored values
//  4. recompute receipt_hash over the receipt minus receipt_hash and compare
//  5. on success, return Result; any mismatch returns a replay_reject error
func Verify(store *artifacts.Store, receiptID string) (Result, error) {
	receiptPath := store.Path("receipts", receiptID+".json")
	receiptBytes, err := store.ReadFile(receiptPath)
	if err != nil {
		return Result{}, err
	}

	var receipt inference.Receipt
	if err := json.Unmarshal(receiptBytes, &receipt); err != nil {
		return Result{}, fmt.Errorf("%w: malformed receipt %s: %v", errs.ErrValidation, receiptID, err)
	}
	if receipt.Kind != "inference.receipt" {
		return Result{}, fmt.Errorf("%w: replay_reject: %s is not an inference.receipt", errs.ErrReplayReject, receiptID)
	}
	if _, decErr := hex.DecodeString(receipt.ReceiptHash); len(receipt.ReceiptHash) != 64 || decErr != nil {
		return Result{}, fmt.Errorf("%w: replay_reject: receipt_hash is not 64 hex characters", errs.ErrReplayReject)
	}

	requestPath := store.Path("requests", receipt.RequestID+".json")
	if _, err := store.ReadFile(requestPath); err != nil {
		return Result{}, fmt.Errorf("%w: replay_reject: referenced request %s does not exist", errs.ErrReplayReject, receipt.RequestID)
	}

	var resultPath string
	switch receipt.Result.Kind {
	case "response":
		resultPath = store.Path("responses", receipt.Result.ArtifactID+".json")
	case "error":
		resultPath = store.Path("errors", receipt.Result.ArtifactID+".json")
	default:
		return Result{}, fmt.Errorf("%w: replay_reject: unknown result_kind %q", errs.ErrReplayReject, receipt.Result.Kind)
	}
	if _, err := store.ReadFile(resultPath); err != nil {
		return Result{}, fmt.Errorf("%w: replay_reject: referenced result %s does not exist", errs.ErrReplayReject, receipt.Result.ArtifactID)
	}

	requestSHA, err := artifacts.HashFile(requestPath)
	if err != nil {
		return Result{}, err
	}
	if requestSHA != receipt.InputsSHA256.RequestSHA256 {
		return Result{}, fmt.Errorf("%w: replay_reject: request sha mismatch", errs.ErrReplayReject)
	}

	resultSHA, err := artifacts.HashFile(resultPath)
	if err != nil {
		return Result{}, err
	}
	if resultSHA != receipt.InputsSHA256.ResultSHA256 {
		return Result{}, fmt.Errorf("%w: replay_reject: result sha mismatch", errs.ErrReplayReject)
	}

	base := map[string]any{
		"kind":           "inference.receipt",
		"created_at_utc": receipt.CreatedAtUTC,
		"request_id":     receipt.RequestID,
		"request_hash":   receipt.RequestHash,
		"snapshot_hash":  receipt.SnapshotHash,
		"provider":       receipt.Provider,
		"model":          receipt.Model,
		"result": map[string]any{
			"kind":        receipt.Result.Kind,
			"artifact_id": receipt.Result.ArtifactID,
		},
		"inputs_sha256": map[string]any{
			"request_sha256": receipt.InputsSHA256.RequestSHA256,
			"result_sha256":  receipt.InputsSHA256.ResultSHA256,
		},
	}
	recomputedHash, err := canonicalize.ContentHash(base)
	if err != nil {
		return Result{}, err
	}
	if recomputedHash != receipt.ReceiptHash {
		return Result{}, fmt.Errorf("%w: replay_reject: receipt_hash mismatch", errs.ErrReplayReject)
	}

	return Result{
		Status:        "replay_ok",
		ReceiptID:     receiptID,
		RequestSHA256: requestSHA,
		ResultSHA256:  resultSHA,
		ReceiptHash:   receipt.ReceiptHash,
	}, nil
}
