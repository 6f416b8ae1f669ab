package dispatch

import (
	"context"
	"fmt"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/inference"
	"github.com/marcoevans693-eng/adamos-v0/pkg/memorywrite"
	"github.com/marcoevans693-eng/adamos-v0/pkg/pipeline"
	"github.com/marcoevans693-eng/adamos-v0/pkg/repotools"
	"github.com/marcoevans693-eng/adamos-v0/pkg/replay"
)

func toolRepoListFiles(_ context.Context, env *Env, _ toolInput) (any, error) {
	return repotools.ListFiles(env.RepoRoot)
}

func toolRepoReadText(_ context.Context, env *Env, in toolInput) (any, error) {
	relPath, err := requireField(in, "rel_path")
	if err != nil {
		return nil, err
	}
	return repotools.ReadText(env.RepoRoot, relPath)
}

func toolMemoryWrite(_ context.Context, _ *Env, in toolInput) (any, error) {
	storePath, err := requireField(in, "store_path")
	if err != nil {
		return nil, err
	}
	return memorywrite.Write(memorywrite.Input{
		StorePath:    storePath,
		RecordType:   strField(in, "record_type"),
		Source:       strField(in, "source"),
		Tags:         stringSliceField(in, "tags"),
		Text:         strField(in, "text"),
		Refs:         stringSliceField(in, "refs"),
		CreatedAtUTC: strField(in, "created_at_utc"),
		MemoryID:     strField(in, "memory_id"),
	})
}

func toolArtifactIngest(_ context.Context, env *Env, in toolInput) (any, error) {
	return pipeline.Ingest(env.ArtifactStore, env.ArtifactReg, pipeline.IngestInput{
		Text:         strField(in, "text"),
		CreatedAtUTC: strField(in, "created_at_utc"),
		ArtifactID:   strField(in, "artifact_id"),
	})
}

func toolArtifactSanitize(_ context.Context, env *Env, in toolInput) (any, error) {
	rawID, err := requireField(in, "raw_artifact_id")
	if err != nil {
		return nil, err
	}
	return pipeline.Sanitize(env.ArtifactStore, env.ArtifactReg, pipeline.SanitizeInput{
		RawArtifactID: rawID,
		CreatedAtUTC:  strField(in, "created_at_utc"),
		ArtifactID:    strField(in, "artifact_id"),
	})
}

func toolArtifactCanonSelect(_ context.Context, env *Env, in toolInput) (any, error) {
	sanitizedID, err := requireField(in, "sanitized_artifact_id")
	if err != nil {
		return nil, err
	}
	return pipeline.CanonSelect(env.ArtifactStore, env.ArtifactReg, pipeline.CanonSelectInput{
		SanitizedArtifactID: sanitizedID,
		CreatedAtUTC:        strField(in, "created_at_utc"),
		ArtifactID:          strField(in, "artifact_id"),
	})
}

func toolArtifactBundleManifest(_ context.Context, env *Env, in toolInput) (any, error) {
	canonID, err := requireField(in, "canon_artifact_id")
	if err != nil {
		return nil, err
	}
	return pipeline.BundleManifest(env.ArtifactStore, env.ArtifactReg, pipeline.BundleManifestInput{
		CanonArtifactID: canonID,
		CreatedAtUTC:    strField(in, "created_at_utc"),
		ArtifactID:      strField(in, "artifact_id"),
	})
}

func toolArtifactBuildSpec(_ context.Context, env *Env, in toolInput) (any, error) {
	bundleManifestID, err := requireField(in, "bundle_manifest_id")
	if err != nil {
		return nil, err
	}
	return pipeline.BuildSpec(env.ArtifactStore, env.ArtifactReg, pipeline.BuildSpecInput{
		BundleManifestID: bundleManifestID,
		CreatedAtUTC:     strField(in, "created_at_utc"),
		ArtifactID:       strField(in, "artifact_id"),
	})
}

func toolArtifactWorkOrderEmit(_ context.Context, env *Env, in toolInput) (any, error) {
	buildSpecID, err := requireField(in, "build_spec_id")
	if err != nil {
		return nil, err
	}
	return pipeline.WorkOrderEmit(env.ArtifactStore, env.ArtifactReg, pipeline.WorkOrderEmitInput{
		BuildSpecID:  buildSpecID,
		CreatedAtUTC: strField(in, "created_at_utc"),
		ArtifactID:   strField(in, "artifact_id"),
	})
}

func toolArtifactSnapshotExport(ctx context.Context, env *Env, in toolInput) (any, error) {
	workOrderID, err := requireField(in, "work_order_id")
	if err != nil {
		return nil, err
	}
	passphrase, err := requireField(in, "passphrase")
	if err != nil {
		return nil, err
	}
	sourceRoot := strField(in, "source_root")
	if sourceRoot == "" {
		sourceRoot = env.ArtifactStore.Root()
	}
	return pipeline.SnapshotExport(ctx, env.ArtifactStore, env.ArtifactReg, pipeline.SnapshotExportInput{
		WorkOrderID:  workOrderID,
		SourceRoot:   sourceRoot,
		Passphrase:   passphrase,
		CreatedAtUTC: strField(in, "created_at_utc"),
		SnapshotID:   strField(in, "snapshot_id"),
		Mirror:       env.SnapshotMirror,
	})
}

// toolInferenceRequestEmit combines provider-cap lookup, policy enforcement,
// request hashing, and persistence in one step — the tool surface this
// runtime exposes to callers, even though the underlying package splits
// build and emit into two pure functions.
func toolInferenceRequestEmit(_ context.Context, env *Env, in toolInput) (any, error) {
	provider, err := requireField(in, "provider")
	if err != nil {
		return nil, err
	}
	model, err := requireField(in, "model")
	if err != nil {
		return nil, err
	}
	tokenCap, err := inference.SelectProviderCap(provider)
	if err != nil {
		return nil, err
	}

	req, err := inference.BuildRequest(env.Gate, inference.BuildRequestInput{
		Provider:             provider,
		Model:                model,
		Temperature:          floatField(in, "temperature"),
		MaxTokens:            intField(in, "max_tokens"),
		ProviderMaxTokensCap: tokenCap,
		SystemPrompt:         strField(in, "system_prompt"),
		UserPrompt:           strField(in, "user_prompt"),
		SnapshotHash:         strField(in, "snapshot_hash"),
		CreatedAtUTC:         strField(in, "created_at_utc"),
		RequestID:            strField(in, "request_id"),
	})
	if err != nil {
		return nil, err
	}

	return inference.EmitRequest(env.InfStore, env.InfReg, strField(in, "created_at_utc"), inference.RequestEmitInput{
		Request: req,
		Layout:  artifacts.NewLayout(env.InfStore.Root()),
	})
}

func toolInferenceResponseEmit(_ context.Context, env *Env, in toolInput) (any, error) {
	responseID, err := requireField(in, "response_id")
	if err != nil {
		return nil, err
	}
	requestID, err := requireField(in, "request_id")
	if err != nil {
		return nil, err
	}
	return inference.EmitResponse(env.InfStore, env.InfReg, strField(in, "created_at_utc"), inference.Response{
		Kind:         "inference.response",
		ResponseID:   responseID,
		RequestID:    requestID,
		OutputText:   strField(in, "output_text"),
		CreatedAtUTC: strField(in, "created_at_utc"),
	})
}

func toolInferenceErrorEmit(_ context.Context, env *Env, in toolInput) (any, error) {
	errorID, err := requireField(in, "error_id")
	if err != nil {
		return nil, err
	}
	requestID, err := requireField(in, "request_id")
	if err != nil {
		return nil, err
	}
	return inference.EmitError(env.InfStore, env.InfReg, strField(in, "created_at_utc"), inference.InferenceError{
		Kind:         "inference.error",
		ErrorID:      errorID,
		RequestID:    requestID,
		ErrorType:    strField(in, "error_type"),
		Message:      strField(in, "message"),
		CreatedAtUTC: strField(in, "created_at_utc"),
	})
}

func toolInferenceReceiptEmit(_ context.Context, env *Env, in toolInput) (any, error) {
	receiptID, err := requireField(in, "receipt_id")
	if err != nil {
		return nil, err
	}
	requestID, err := requireField(in, "request_id")
	if err != nil {
		return nil, err
	}
	return inference.EmitReceipt(env.InfStore, env.InfReg, inference.ReceiptEmitInput{
		ReceiptID:    receiptID,
		RequestID:    requestID,
		RequestHash:  strField(in, "request_hash"),
		SnapshotHash: strField(in, "snapshot_hash"),
		Provider:     strField(in, "provider"),
		Model:        strField(in, "model"),
		ResponseID:   strField(in, "response_id"),
		ErrorID:      strField(in, "error_id"),
		CreatedAtUTC: strField(in, "created_at_utc"),
	})
}

func toolInferenceExecute(ctx context.Context, env *Env, in toolInput) (any, error) {
	requestID, err := requireField(in, "request_id")
	if err != nil {
		return nil, err
	}
	if env.Provider == nil {
		return nil, fmt.Errorf("dispatch: inference.execute requires a Provider to be configured")
	}
	return inference.Execute(ctx, env.InfStore, env.InfReg, env.Provider, inference.ExecuteInput{
		RequestID:    requestID,
		CreatedAtUTC: strField(in, "created_at_utc"),
	})
}

func toolInferenceReplay(_ context.Context, env *Env, in toolInput) (any, error) {
	receiptID, err := requireField(in, "receipt_id")
	if err != nil {
		return nil, err
	}
	return replay.Verify(env.InfStore, receiptID)
}

func toolInferenceProviderSelect(_ context.Context, _ *Env, in toolInput) (any, error) {
	provider, err := requireField(in, "provider")
	if err != nil {
		return nil, err
	}
	tokenCap, err := inference.SelectProviderCap(provider)
	if err != nil {
		return nil, err
	}
	return map[string]any{"provider": provider, "max_tokens_cap": tokenCap}, nil
}
