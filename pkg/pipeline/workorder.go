package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// WorkOrderLineage binds a work order to the exact build_spec bytes on
// disk at emit time (always recomputed, never read back from a prior
// registry entry) plus the bundle_hash and prompt_hash it inherits.
type WorkOrderLineage struct {
	BuildSpecArtifactID string `json:"build_spec_artifact_id"`
	BuildSpecSHA256     string `json:"build_spec_sha256"`
	BundleHash          string `json:"bundle_hash"`
	PromptHash          string `json:"prompt_hash"`
}

// WorkOrderConstraints is a fixed, non-negotiable constraint block: a work
// order is a declarative description of intended work, never an
// instruction to execute anything directly.
type WorkOrderConstraints struct {
	NoExecution      bool `json:"no_execution"`
	DeclarativeOnly  bool `json:"declarative_only"`
	ProxyRequired    bool `json:"proxy_required"`
}

// WorkOrderScopeBoundaries is a fixed scope-boundary block matching
// artifact_work_order_emit.py.
type WorkOrderScopeBoundaries struct {
	FilesystemWrites    string `json:"filesystem_writes"`
	NoRuntimeResolution bool   `json:"no_runtime_resolution"`
}

// WorkOrder is the work_order JSON payload. WorkOrderHash binds the order
// to the exact build_spec bytes on disk at emit time — it is always
// recomputed, never read back from a prior registry entry.
type WorkOrder struct {
	ArtifactID       string                   `json:"artifact_id"`
	Kind             string                   `json:"kind"`
	CreatedAtUTC     string                   `json:"created_at_utc"`
	Lineage          WorkOrderLineage         `json:"lineage"`
	ExecutionIntent  Spec                     `json:"execution_intent"`
	Constraints      WorkOrderConstraints     `json:"constraints"`
	ScopeBoundaries  WorkOrderScopeBoundaries `json:"scope_boundaries"`
	OpenQuestions    []any                    `json:"open_questions"`
	Notes            string                   `json:"notes"`
	Tags             []string                 `json:"tags"`
	WorkOrderHash    string                   `json:"work_order_hash"`
}

type WorkOrderEmitInput struct {
	BuildSpecID  string
	CreatedAtUTC string
	ArtifactID   string // optional
}

type WorkOrderEmitResult struct {
	ArtifactID string `json:"artifact_id"`
	SHA256     string `json:"sha256"`
	Path       string `json:"path"`
}

// WorkOrderEmit reads the build_spec content off disk (never trusting a
// stored field), recomputes the build_spec's file hash, extracts
// bundle_hash and prompt_hash from it, builds the declarative work order,
// hashes it (with work_order_hash itself excluded from the hash input,
// then appended afterward), and writes it to <root>/work_orders/<id>.json,
// registering a WORK_ORDER record whose parent is the build spec.
func WorkOrderEmit(store *artifacts.Store, reg *artifacts.Registry, in WorkOrderEmitInput) (WorkOrderEmitResult, error) {
	artifactID := deriveChildID(in.ArtifactID, in.BuildSpecID, "work_order")
	path := store.Path("work_orders", artifactID+".json")

	already, err := reg.Contains(artifactID, artifacts.KindWorkOrder)
	if err != nil {
		return WorkOrderEmitResult{}, err
	}
	if already {
		sha, err := artifacts.HashFile(path)
		if err != nil {
			return WorkOrderEmitResult{}, err
		}
		return WorkOrderEmitResult{ArtifactID: artifactID, SHA256: sha, Path: path}, nil
	}

	specPath := store.Path("specs", in.BuildSpecID+".json")
	specBytes, err := store.ReadFile(specPath)
	if err != nil {
		return WorkOrderEmitResult{}, fmt.Errorf("%w: BUILD_SPEC not found: %s", errs.ErrValidation, specPath)
	}
	var spec BuildSpecPayload
	if err := json.Unmarshal(specBytes, &spec); err != nil {
		return WorkOrderEmitResult{}, fmt.Errorf("%w: build spec is not valid JSON: %v", errs.ErrValidation, err)
	}
	if strings.TrimSpace(spec.Bundle.BundleHash) == "" || strings.TrimSpace(spec.Audit.PromptHash) == "" {
		return WorkOrderEmitResult{}, fmt.Errorf("%w: build spec missing bundle_hash or prompt_hash", errs.ErrValidation)
	}
	specSHA := artifacts.HashBytes(specBytes)

	base := map[string]any{
		"artifact_id":    artifactID,
		"kind":           "WORK_ORDER",
		"created_at_utc": in.CreatedAtUTC,
		"lineage": map[string]any{
			"build_spec_artifact_id": in.BuildSpecID,
			"build_spec_sha256":      specSHA,
			"bundle_hash":            spec.Bundle.BundleHash,
			"prompt_hash":            spec.Audit.PromptHash,
		},
		"execution_intent": spec.Spec,
		"constraints": map[string]any{
			"no_execution":     true,
			"declarative_only": true,
			"proxy_required":   true,
		},
		"scope_boundaries": map[string]any{
			"filesystem_writes":     "artifact_root_only",
			"no_runtime_resolution": true,
		},
		"open_questions": spec.Spec.OpenQuestions,
		"notes":          "artifact.work_order_emit",
		"tags":           []string{"phase7", "work_order", "declarative"},
	}
	workOrderHash, err := canonicalize.ContentHash(base)
	if err != nil {
		return WorkOrderEmitResult{}, err
	}

	order := WorkOrder{
		ArtifactID:   artifactID,
		Kind:         "WORK_ORDER",
		CreatedAtUTC: in.CreatedAtUTC,
		Lineage: WorkOrderLineage{
			BuildSpecArtifactID: in.BuildSpecID,
			BuildSpecSHA256:     specSHA,
			BundleHash:          spec.Bundle.BundleHash,
			PromptHash:          spec.Audit.PromptHash,
		},
		ExecutionIntent: spec.Spec,
		Constraints: WorkOrderConstraints{
			NoExecution:     true,
			DeclarativeOnly: true,
			ProxyRequired:   true,
		},
		ScopeBoundaries: WorkOrderScopeBoundaries{
			FilesystemWrites:    "artifact_root_only",
			NoRuntimeResolution: true,
		},
		OpenQuestions: spec.Spec.OpenQuestions,
		Notes:         "artifact.work_order_emit",
		Tags:          []string{"phase7", "work_order", "declarative"},
		WorkOrderHash: workOrderHash,
	}

	body, err := canonicalize.Bytes(order)
	if err != nil {
		return WorkOrderEmitResult{}, err
	}
	if err := store.WriteFile(path, body); err != nil {
		return WorkOrderEmitResult{}, err
	}

	sha := artifacts.HashBytes(body)

	if err := reg.Append(artifacts.Record{
		ArtifactID:        artifactID,
		Kind:              artifacts.KindWorkOrder,
		CreatedAtUTC:      in.CreatedAtUTC,
		SHA256:            sha,
		ByteSize:          int64(len(body)),
		MediaType:         "application/json",
		ParentArtifactIDs: []string{in.BuildSpecID},
		Notes:             "work_order_emit",
	}); err != nil {
		return WorkOrderEmitResult{}, err
	}

	return WorkOrderEmitResult{ArtifactID: artifactID, SHA256: sha, Path: path}, nil
}
