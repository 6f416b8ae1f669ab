package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
	"golang.org/x/time/rate"
)

// Provider is the external collaborator interface inference.execute calls.
// Concrete HTTP provider clients are out of scope for this runtime (per
// spec.md §1); callers inject their own implementation or the in-memory
// fake used by tests.
type Provider interface {
	CallText(ctx context.Context, provider, model, systemPrompt, userPrompt string, temperature float64, maxTokens int) (text string, err error)
}

// ProviderHTTPError marks a normalized preflight/transport failure from a
// provider, distinct from any other execution failure.
type ProviderHTTPError struct {
	Message string
}

func (e *ProviderHTTPError) Error() string { return e.Message }

// ExecuteInput is the tool_input for inference.execute.
type ExecuteInput struct {
	RequestID    string
	CreatedAtUTC string
	Limiter      *rate.Limiter // optional; nil means unlimited
}

// ExecuteResult reports what execute did: which response/error was emitted
// and the receipt that was always produced alongside it (P8).
type ExecuteResult struct {
	ResponseID *string
	ErrorID    *string
	Receipt    ReceiptEmitResult
}

// Execute loads the request at request_id, calls provider, and always
// emits exactly one response-or-error artifact plus exactly one receipt —
// regardless of outcome. This strengthens the literal original Python
// wiring (which leaves receipt emission to a separate external call) to
// satisfy spec.md §4.6/P8 directly; see DESIGN.md.
func Execute(ctx context.Context, store *artifacts.Store, reg *Registry, provider Provider, in ExecuteInput) (ExecuteResult, error) {
	if in.Limiter != nil {
		if err := in.Limiter.Wait(ctx); err != nil {
			return ExecuteResult{}, err
		}
	}

	reqPath := store.Path("requests", in.RequestID+".json")
	reqBytes, err := store.ReadFile(reqPath)
	if err != nil {
		return ExecuteResult{}, err
	}

	var req Request
	if err := json.Unmarshal(reqBytes, &req); err != nil {
		return ExecuteResult{}, fmt.Errorf("%w: malformed request %s: %v", errs.ErrValidation, in.RequestID, err)
	}
	if req.Kind != "inference.request" {
		return ExecuteResult{}, fmt.Errorf("%w: %s is not an inference.request", errs.ErrValidation, in.RequestID)
	}

	text, callErr := provider.CallText(ctx, req.Provider, req.Model, req.Prompts.SystemPrompt, req.Prompts.UserPrompt, req.Params.Temperature, req.Params.MaxTokens)

	responseID := in.RequestID + "--response"
	errorID := in.RequestID + "--error"

	if callErr == nil {
		if _, err := EmitResponse(store, reg, in.CreatedAtUTC, Response{
			Kind:         "inference.response",
			ResponseID:   responseID,
			RequestID:    in.RequestID,
			OutputText:   text,
			CreatedAtUTC: in.CreatedAtUTC,
		}); err != nil {
			return ExecuteResult{}, err
		}

		receiptID := in.RequestID + "--receipt"
		receipt, err := EmitReceipt(store, reg, ReceiptEmitInput{
			ReceiptID:    receiptID,
			RequestID:    in.RequestID,
			RequestHash:  req.RequestHash,
			SnapshotHash: req.SnapshotHash,
			Provider:     req.Provider,
			Model:        req.Model,
			ResponseID:   responseID,
			CreatedAtUTC: in.CreatedAtUTC,
		})
		if err != nil {
			return ExecuteResult{}, err
		}

		return ExecuteResult{ResponseID: &responseID, Receipt: receipt}, nil
	}

	errType := "inference_execute_error"
	var httpErr *ProviderHTTPError
	if errors.As(callErr, &httpErr) {
		errType = "provider_http_error"
	}

	if _, err := EmitError(store, reg, in.CreatedAtUTC, InferenceError{
		Kind:         "inference.error",
		ErrorID:      errorID,
		RequestID:    in.RequestID,
		ErrorType:    errType,
		Message:      callErr.Error(),
		CreatedAtUTC: in.CreatedAtUTC,
	}); err != nil {
		return ExecuteResult{}, err
	}

	receiptID := in.RequestID + "--receipt"
	receipt, err := EmitReceipt(store, reg, ReceiptEmitInput{
		ReceiptID:    receiptID,
		RequestID:    in.RequestID,
		RequestHash:  req.RequestHash,
		SnapshotHash: req.SnapshotHash,
		Provider:     req.Provider,
		Model:        req.Model,
		ErrorID:      errorID,
		CreatedAtUTC: in.CreatedAtUTC,
	})
	if err != nil {
		return ExecuteResult{}, err
	}

	return ExecuteResult{ErrorID: &errorID, Receipt: receipt}, nil
}
