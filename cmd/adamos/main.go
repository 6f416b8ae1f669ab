// Command adamos is the thin bootstrap entrypoint wiring pkg/config,
// pkg/policy, pkg/artifacts, pkg/inference and pkg/observability into a
// pkg/dispatch.Env and running exactly one tool call read from stdin as
// JSON. CLI argument parsing is out of scope (spec.md §1): the only
// surface here is this one request/response envelope, not a flag set or
// subcommand tree.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/config"
	"github.com/marcoevans693-eng/adamos-v0/pkg/dispatch"
	"github.com/marcoevans693-eng/adamos-v0/pkg/inference"
	"github.com/marcoevans693-eng/adamos-v0/pkg/observability"
)

// request is the stdin envelope: {"tool": "...", "run_id": "...", "input": {...}}.
type request struct {
	Tool  string         `json:"tool"`
	RunID string         `json:"run_id"`
	Input map[string]any `json:"input"`
}

// response is the stdout envelope.
type response struct {
	RunID           string   `json:"run_id"`
	Tool            string   `json:"tool"`
	OK              bool     `json:"ok"`
	Error           string   `json:"error,omitempty"`
	Output          any      `json:"output,omitempty"`
	TrustStatus     string   `json:"trust_status"`
	TrustViolations []string `json:"trust_violations,omitempty"`
}

func main() {
	os.Exit(run(os.Stdin, os.Stdout, os.Stderr))
}

func run(stdin io.Reader, stdout, stderr io.Writer) int {
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	cfg := config.Load()

	gate, err := cfg.BuildGate()
	if err != nil {
		logger.Error("building policy gate", "error", err)
		return 1
	}

	jwtSecret := os.Getenv("ADAMOS_JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("ADAMOS_JWT_SECRET is required")
		return 1
	}

	tracer, err := observability.New(context.Background(), observability.DefaultConfig())
	if err != nil {
		logger.Error("initializing tracer", "error", err)
		return 1
	}
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	mirror, err := cfg.BuildSnapshotMirror(context.Background())
	if err != nil {
		logger.Error("building snapshot mirror", "error", err)
		return 1
	}

	firewall := dispatch.NewSchemaFirewall()
	for toolName, schema := range dispatch.DefaultToolInputSchemas() {
		if err := firewall.RegisterSchema(toolName, schema); err != nil {
			logger.Error("registering tool input schema", "tool", toolName, "error", err)
			return 1
		}
	}

	artifactLayout := artifacts.NewLayout(cfg.ArtifactRoot)
	env := &dispatch.Env{
		ArtifactStore:      artifacts.NewStore(cfg.ArtifactRoot),
		ArtifactReg:        artifacts.NewRegistry(artifactLayout.RegistryPath()),
		InfStore:           artifacts.NewStore(cfg.InferenceRoot),
		InfReg:             inference.NewRegistry(fmt.Sprintf("%s/inference_registry.jsonl", cfg.InferenceRoot)),
		Gate:               gate,
		Provider:           nil, // concrete HTTP provider clients are out of scope; embedders inject their own
		SnapshotMirror:     mirror,
		Firewall:           firewall,
		RepoRoot:           cfg.RepoRoot,
		EngineeringLogPath: cfg.EngineeringLogPath,
		RunDir:             cfg.RunDir,
		JWTSecret:          []byte(jwtSecret),
		Tracer:             tracer,
	}

	var req request
	if err := json.NewDecoder(stdin).Decode(&req); err != nil {
		logger.Error("decoding request", "error", err)
		return 1
	}

	result, dispatchErr := dispatch.Dispatch(context.Background(), env, req.Tool, req.Input, req.RunID)

	resp := response{
		RunID:           result.RunID,
		Tool:            result.ToolName,
		OK:              dispatchErr == nil,
		Output:          result.Output,
		TrustStatus:     string(result.TrustStatus),
		TrustViolations: result.TrustViolations,
	}
	if dispatchErr != nil {
		resp.Error = dispatchErr.Error()
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		logger.Error("encoding response", "error", err)
		return 1
	}

	if dispatchErr != nil {
		return 1
	}
	return 0
}
