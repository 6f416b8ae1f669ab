package dispatch

import (
	"context"
	"fmt"
)

// ToolFunc is the uniform shape every registered tool handler implements.
// Handlers extract their own fields from in and return a JSON-serializable
// result.
type ToolFunc func(ctx context.Context, env *Env, in toolInput) (any, error)

// ToolNames is the frozen set of every tool this runtime registers,
// matching spec.md §6's tool surface exactly.
var ToolNames = []string{
	"repo.list_files",
	"repo.read_text",
	"memory.write",
	"artifact.ingest",
	"artifact.sanitize",
	"artifact.canon_select",
	"artifact.bundle_manifest",
	"artifact.build_spec",
	"artifact.work_order_emit",
	"artifact.snapshot_export",
	"inference.request_emit",
	"inference.response_emit",
	"inference.error_emit",
	"inference.receipt_emit",
	"inference.execute",
	"inference.replay",
	"inference.provider_select",
}

// handlers returns the full tool name -> ToolFunc registry, built fresh on
// each call.
func handlers() map[string]ToolFunc {
	return map[string]ToolFunc{
		"repo.list_files":           toolRepoListFiles,
		"repo.read_text":            toolRepoReadText,
		"memory.write":              toolMemoryWrite,
		"artifact.ingest":           toolArtifactIngest,
		"artifact.sanitize":         toolArtifactSanitize,
		"artifact.canon_select":     toolArtifactCanonSelect,
		"artifact.bundle_manifest":  toolArtifactBundleManifest,
		"artifact.build_spec":       toolArtifactBuildSpec,
		"artifact.work_order_emit":  toolArtifactWorkOrderEmit,
		"artifact.snapshot_export":  toolArtifactSnapshotExport,
		"inference.request_emit":    toolInferenceRequestEmit,
		"inference.response_emit":   toolInferenceResponseEmit,
		"inference.error_emit":      toolInferenceErrorEmit,
		"inference.receipt_emit":    toolInferenceReceiptEmit,
		"inference.execute":         toolInferenceExecute,
		"inference.replay":          toolInferenceReplay,
		"inference.provider_select": toolInferenceProviderSelect,
	}
}

func lookup(toolName string) (ToolFunc, error) {
	fn, ok := handlers()[toolName]
	if !ok {
		return nil, fmt.Errorf("dispatch: unknown tool %q", toolName)
	}
	return fn, nil
}
