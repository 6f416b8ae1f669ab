// Package policy implements the inference policy gate (C5): a pure,
// side-effect-free function of request fields. It makes no provider calls
// and performs no ledger or registry writes.
package policy

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/google/cel-go/cel"
	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
)

// Version is this gate's compiled-in policy version, validated as semver at
// init time.
const Version = "1.0.0"

func init() {
	if _, err := semver.NewVersion(Version); err != nil {
		panic(fmt.Sprintf("policy: compiled-in Version %q is not valid semver: %v", Version, err))
	}
}

// OpenAIAllowedModels is the exact, non-aliased allowlist for provider
// "openai", matching adam_os/inference/policy_gate.py.
var OpenAIAllowedModels = map[string]bool{
	"gpt-4o":       true,
	"gpt-4.1":      true,
	"gpt-4.1-mini": true,
}

// AnthropicAllowedModels is the exact, non-aliased allowlist for provider
// "anthropic".
var AnthropicAllowedModels = map[string]bool{
	"claude-3-opus":   true,
	"claude-3-sonnet": true,
	"claude-3-haiku":  true,
}

// Request is the subset of inference.request fields the gate inspects.
type Request struct {
	Provider             string
	Model                string
	Temperature          float64
	MaxTokens            int
	ProviderMaxTokensCap int
}

// CELExpression is an additional organization-defined boolean predicate,
// evaluated only after every core check has already passed. A CEL
// expression can only add rejections: it is never consulted unless the
// core checks already succeeded, and a false result from it rejects, but a
// true result never overrides a core rejection.
type CELExpression struct {
	Name string
	Expr string
}

// Gate evaluates the inference policy gate.
type Gate struct {
	supplementary []*cel.Program
	names         []string
	modelOverlay  map[string]map[string]bool
}

// New returns a Gate with no supplementary CEL predicates.
func New() *Gate {
	return &Gate{}
}

// WithModelAllowlistOverlay narrows the per-provider model allowlist to the
// intersection of the compiled-in allowlist and overlay; it can only ever
// remove models a deployment's policy file excludes, never add one outside
// OpenAIAllowedModels/AnthropicAllowedModels (pkg/config's
// ADAMOS_POLICY_FILE loader is the only caller of this).
func (g *Gate) WithModelAllowlistOverlay(overlay map[string][]string) *Gate {
	out := *g
	out.modelOverlay = make(map[string]map[string]bool, len(overlay))
	for provider, models := range overlay {
		set := make(map[string]bool, len(models))
		for _, m := range models {
			set[m] = true
		}
		out.modelOverlay[provider] = set
	}
	return &out
}

// WithCELExpressions compiles and attaches supplementary CEL predicates.
// Compilation errors are returned immediately; a misconfigured predicate
// must never silently pass through as "allowed".
func (g *Gate) WithCELExpressions(exprs []CELExpression) (*Gate, error) {
	env, err := cel.NewEnv(
		cel.Variable("provider", cel.StringType),
		cel.Variable("model", cel.StringType),
		cel.Variable("temperature", cel.DoubleType),
		cel.Variable("max_tokens", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("policy: building CEL env: %w", err)
	}

	out := &Gate{
		supplementary: append([]*cel.Program(nil), g.supplementary...),
		names:         append([]string(nil), g.names...),
		modelOverlay:  g.modelOverlay,
	}
	for _, e := range exprs {
		ast, issues := env.Compile(e.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("policy: compiling CEL expression %q: %w", e.Name, issues.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("policy: building CEL program %q: %w", e.Name, err)
		}
		out.supplementary = append(out.supplementary, &prg)
		out.names = append(out.names, e.Name)
	}
	return out, nil
}

// Enforce runs the fail-closed checks from spec.md §4.5, in order:
// provider membership, model allowlist (no aliasing), temperature bounds,
// max_tokens positivity, provider_max_tokens_cap injection, and the cap
// comparison. Rejection messages are always prefixed "policy_reject: ".
func (g *Gate) Enforce(req Request) error {
	switch req.Provider {
	case "openai":
		if !OpenAIAllowedModels[req.Model] {
			return reject("model not allowlisted")
		}
	case "anthropic":
		if !AnthropicAllowedModels[req.Model] {
			return reject("model not allowlisted")
		}
	default:
		return reject("provider not allowlisted")
	}
	if overlay, ok := g.modelOverlay[req.Provider]; ok && !overlay[req.Model] {
		return reject("model excluded by policy overlay")
	}

	if req.Temperature < 0.0 || req.Temperature > 1.0 {
		return reject("temperature out of bounds")
	}

	if req.MaxTokens <= 0 {
		return reject("max_tokens must be a positive integer")
	}

	if req.ProviderMaxTokensCap <= 0 {
		return reject("provider_max_tokens_cap must be injected by the caller")
	}

	if req.MaxTokens > req.ProviderMaxTokensCap {
		return reject("max_tokens exceeds provider_max_tokens_cap")
	}

	for i, prg := range g.supplementary {
		out, _, err := (*prg).Eval(map[string]any{
			"provider":    req.Provider,
			"model":       req.Model,
			"temperature": req.Temperature,
			"max_tokens":  req.MaxTokens,
		})
		if err != nil {
			return reject(fmt.Sprintf("supplementary predicate %q errored: %v", g.names[i], err))
		}
		allowed, ok := out.Value().(bool)
		if !ok || !allowed {
			return reject(fmt.Sprintf("supplementary predicate %q rejected request", g.names[i]))
		}
	}

	return nil
}

func reject(msg string) error {
	return fmt.Errorf("%w: %s", errs.ErrPolicyReject, msg)
}
