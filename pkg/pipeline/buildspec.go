package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// PromptTemplateID is the frozen build_spec prompt template identifier
// from spec.md §4.4.
const PromptTemplateID = "PHASE7_STEP8_BUILD_SPEC_V1"

func frozenPromptTemplate() map[string]any {
	return map[string]any{
		"template_id": PromptTemplateID,
		"intent":      "Convert bundle manifest into an auditable BUILD_SPEC with strict separation of source-based vs inferred vs assumptions; include open questions and a source map.",
		"required_sections": []string{
			"SOURCE_BASED", "INFERRED", "ASSUMPTIONS", "OPEN_QUESTIONS", "SOURCE_MAP",
		},
		"rules": []string{
			"Do not invent facts; put unknowns into OPEN_QUESTIONS.",
			"Every claim in SOURCE_BASED must trace to bundle members (artifact_id + sha256).",
			"INFERRED must be explicitly labeled as inference.",
			"ASSUMPTIONS must be explicitly labeled as assumptions.",
		},
	}
}

// BundleRef is the build_spec's reference back to its parent bundle manifest.
type BundleRef struct {
	BundleArtifactID string `json:"bundle_artifact_id"`
	BundleHash       string `json:"bundle_hash"`
}

// Audit is the build_spec's governed-inference metadata block. Temperature
// and MaxTokens are pointers so an absent value canonicalizes to JSON null,
// matching the optional-number handling of artifact_build_spec.py.
type Audit struct {
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
	PromptHash  string   `json:"prompt_hash"`
}

// SpecSection is one of the SOURCE_BASED/INFERRED/ASSUMPTIONS content
// blocks. Claims are left empty by this stage — population is the job of a
// future governed-inference adapter operating on the same schema.
type SpecSection struct {
	Claims []any  `json:"claims"`
	Notes  string `json:"notes"`
}

// SourceMap traces every section to the bundle members its claims would
// cite, so a reviewer can always walk from a claim back to source bytes.
type SourceMap struct {
	SourceBased   []Member `json:"SOURCE_BASED"`
	Inferred      []Member `json:"INFERRED"`
	Assumptions   []Member `json:"ASSUMPTIONS"`
	OpenQuestions []Member `json:"OPEN_QUESTIONS"`
}

// Spec is the build_spec's governed-content body.
type Spec struct {
	SourceBased   SpecSection `json:"SOURCE_BASED"`
	Inferred      SpecSection `json:"INFERRED"`
	Assumptions   SpecSection `json:"ASSUMPTIONS"`
	OpenQuestions []any       `json:"OPEN_QUESTIONS"`
	SourceMap     SourceMap   `json:"SOURCE_MAP"`
}

// BuildSpecPayload is the build_spec JSON payload.
type BuildSpecPayload struct {
	ArtifactID   string    `json:"artifact_id"`
	Kind         string    `json:"kind"`
	CreatedAtUTC string    `json:"created_at_utc"`
	Bundle       BundleRef `json:"bundle"`
	Audit        Audit     `json:"audit"`
	Spec         Spec      `json:"spec"`
	Notes        string    `json:"notes"`
	Tags         []string  `json:"tags"`
}

type BuildSpecInput struct {
	BundleManifestID string
	CreatedAtUTC     string
	ArtifactID       string // optional

	Provider      string
	Model         string
	Temperature   *float64
	MaxTokens     *int
	InferredNotes string
}

type BuildSpecResult struct {
	ArtifactID string `json:"artifact_id"`
	SHA256     string `json:"sha256"`
	Path       string `json:"path"`
}

// BuildSpec reads and validates the parent bundle manifest, binds a
// deterministic prompt_hash over the frozen prompt template, the bundle
// manifest, and the captured inference settings, and writes the BUILD_SPEC
// to <root>/specs/<id>.json, registering a BUILD_SPEC record whose parent
// is the bundle manifest.
func BuildSpec(store *artifacts.Store, reg *artifacts.Registry, in BuildSpecInput) (BuildSpecResult, error) {
	artifactID := deriveChildID(in.ArtifactID, in.BundleManifestID, "build_spec")
	path := store.Path("specs", artifactID+".json")

	provider := strings.TrimSpace(in.Provider)
	if provider == "" {
		return BuildSpecResult{}, fmt.Errorf("%w: provider must be a non-empty string", errs.ErrValidation)
	}
	model := strings.TrimSpace(in.Model)
	if model == "" {
		return BuildSpecResult{}, fmt.Errorf("%w: model must be a non-empty string", errs.ErrValidation)
	}
	if in.MaxTokens != nil && *in.MaxTokens < 0 {
		return BuildSpecResult{}, fmt.Errorf("%w: max_tokens must be >= 0", errs.ErrValidation)
	}

	already, err := reg.Contains(artifactID, artifacts.KindBuildSpec)
	if err != nil {
		return BuildSpecResult{}, err
	}
	if already {
		sha, err := artifacts.HashFile(path)
		if err != nil {
			return BuildSpecResult{}, err
		}
		return BuildSpecResult{ArtifactID: artifactID, SHA256: sha, Path: path}, nil
	}

	bundlePath := store.Path("bundles", in.BundleManifestID+".json")
	bundleBytes, err := store.ReadFile(bundlePath)
	if err != nil {
		return BuildSpecResult{}, fmt.Errorf("%w: bundle manifest file not found: %s", errs.ErrValidation, bundlePath)
	}
	var bundle Manifest
	if err := json.Unmarshal(bundleBytes, &bundle); err != nil {
		return BuildSpecResult{}, fmt.Errorf("%w: bundle manifest is not valid JSON: %v", errs.ErrValidation, err)
	}
	if bundle.Kind != "BUNDLE_MANIFEST" {
		return BuildSpecResult{}, fmt.Errorf("%w: bundle manifest kind must be BUNDLE_MANIFEST", errs.ErrValidation)
	}
	if len(bundle.BundleHash) != 64 {
		return BuildSpecResult{}, fmt.Errorf("%w: bundle manifest missing valid bundle_hash", errs.ErrValidation)
	}
	for _, m := range bundle.Members {
		if strings.TrimSpace(m.ArtifactID) == "" || len(m.SHA256) != 64 || strings.TrimSpace(m.Kind) == "" || m.ByteSize < 0 {
			return BuildSpecResult{}, fmt.Errorf("%w: bundle manifest has an invalid member", errs.ErrValidation)
		}
	}

	promptPayload := map[string]any{
		"template": frozenPromptTemplate(),
		"bundle_manifest": map[string]any{
			"bundle_id":   bundle.BundleID,
			"bundle_hash": bundle.BundleHash,
			"members":     bundle.Members,
		},
		"inference_settings": map[string]any{
			"provider":    provider,
			"model":       model,
			"temperature": in.Temperature,
			"max_tokens":  in.MaxTokens,
		},
	}
	promptHash, err := canonicalize.ContentHash(promptPayload)
	if err != nil {
		return BuildSpecResult{}, err
	}

	payload := BuildSpecPayload{
		ArtifactID:   artifactID,
		Kind:         "BUILD_SPEC",
		CreatedAtUTC: in.CreatedAtUTC,
		Bundle: BundleRef{
			BundleArtifactID: in.BundleManifestID,
			BundleHash:       bundle.BundleHash,
		},
		Audit: Audit{
			Provider:    provider,
			Model:       model,
			Temperature: in.Temperature,
			MaxTokens:   in.MaxTokens,
			PromptHash:  promptHash,
		},
		Spec: Spec{
			SourceBased: SpecSection{
				Claims: []any{},
				Notes:  "Empty by default; populate via governed inference layer in a future adapter, without changing schema.",
			},
			Inferred: SpecSection{
				Claims: []any{},
				Notes:  in.InferredNotes,
			},
			Assumptions: SpecSection{
				Claims: []any{},
				Notes:  "Empty by default; assumptions belong here (explicitly labeled).",
			},
			OpenQuestions: []any{},
			SourceMap: SourceMap{
				SourceBased:   bundle.Members,
				Inferred:      bundle.Members,
				Assumptions:   bundle.Members,
				OpenQuestions: bundle.Members,
			},
		},
		Notes: "artifact.build_spec",
		Tags:  []string{"phase7", "build_spec", "governed_inference_meta"},
	}

	body, err := canonicalize.Bytes(payload)
	if err != nil {
		return BuildSpecResult{}, err
	}
	if err := store.WriteFile(path, body); err != nil {
		return BuildSpecResult{}, err
	}

	sha := artifacts.HashBytes(body)

	if err := reg.Append(artifacts.Record{
		ArtifactID:        artifactID,
		Kind:              artifacts.KindBuildSpec,
		CreatedAtUTC:      in.CreatedAtUTC,
		SHA256:            sha,
		ByteSize:          int64(len(body)),
		MediaType:         "application/json",
		ParentArtifactIDs: []string{in.BundleManifestID},
		Notes:             "build_spec",
	}); err != nil {
		return BuildSpecResult{}, err
	}

	return BuildSpecResult{ArtifactID: artifactID, SHA256: sha, Path: path}, nil
}
