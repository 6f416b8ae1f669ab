// Package dispatch implements C8: the central tool registry and the single
// dispatcher that may write to the run ledger. Every tool call in this
// runtime flows through Dispatch, never directly.
package dispatch

import (
	"time"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/inference"
	"github.com/marcoevans693-eng/adamos-v0/pkg/observability"
	"github.com/marcoevans693-eng/adamos-v0/pkg/policy"
)

// Env carries every collaborator a tool handler might need. It is built
// once at startup (cmd/adamos) and passed to every Dispatch call.
type Env struct {
	ArtifactStore *artifacts.Store
	ArtifactReg   *artifacts.Registry

	InfStore *artifacts.Store
	InfReg   *inference.Registry

	Gate     *policy.Gate
	Provider inference.Provider

	// SnapshotMirror, when configured, receives a copy of every snapshot
	// export's archive and manifest for off-site durability. Nil disables
	// mirroring entirely.
	SnapshotMirror artifacts.SnapshotMirror

	// Firewall, when configured, validates a tool's input against its
	// registered JSON Schema before the tool handler runs. Nil disables
	// schema enforcement (the allowlist in registry.go still applies).
	Firewall *SchemaFirewall

	RepoRoot           string
	EngineeringLogPath string
	RunDir             string

	JWTSecret []byte
	Clock     func() time.Time

	// Tracer is optional; a nil Tracer leaves dispatcher runs unspanned.
	Tracer *observability.Provider
}

func (e *Env) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

func (e *Env) nowUTCString() string {
	return e.now().UTC().Format(time.RFC3339Nano)
}
