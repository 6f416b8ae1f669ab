package policy

import (
	"errors"
	"testing"

	"github.com/marcoevans693-eng/adamos-v0/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRequest() Request {
	return Request{
		Provider:             "openai",
		Model:                "gpt-4.1-mini",
		Temperature:          0.0,
		MaxTokens:            32,
		ProviderMaxTokensCap: 8192,
	}
}

func TestEnforceAllows(t *testing.T) {
	g := New()
	require.NoError(t, g.Enforce(baseRequest()))
}

func TestEnforceRejectsBadModel(t *testing.T) {
	g := New()
	req := baseRequest()
	req.Model = "gpt-4o-mini"
	err := g.Enforce(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrPolicyReject))
	assert.Contains(t, err.Error(), "policy_reject: model not allowlisted")
}

func TestEnforceRejectsBadProvider(t *testing.T) {
	g := New()
	req := baseRequest()
	req.Provider = "mistral"
	err := g.Enforce(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "policy_reject:")
}

func TestEnforceRejectsTemperatureOutOfBounds(t *testing.T) {
	g := New()
	req := baseRequest()
	req.Temperature = 1.5
	err := g.Enforce(req)
	require.Error(t, err)
}

func TestEnforceRejectsNonPositiveMaxTokens(t *testing.T) {
	g := New()
	req := baseRequest()
	req.MaxTokens = 0
	err := g.Enforce(req)
	require.Error(t, err)
}

func TestEnforceRejectsMissingCap(t *testing.T) {
	g := New()
	req := baseRequest()
	req.ProviderMaxTokensCap = 0
	err := g.Enforce(req)
	require.Error(t, err)
}

func TestEnforceRejectsExceedingCap(t *testing.T) {
	g := New()
	req := baseRequest()
	req.MaxTokens = 9000
	err := g.Enforce(req)
	require.Error(t, err)
}

func TestEnforceAnthropicAllowlist(t *testing.T) {
	g := New()
	req := baseRequest()
	req.Provider = "anthropic"
	req.Model = "claude-3-haiku"
	require.NoError(t, g.Enforce(req))
}

func TestEnforceSupplementaryCELAddsRejection(t *testing.T) {
	g, err := New().WithCELExpressions([]CELExpression{
		{Name: "no-opus", Expr: `model != "claude-3-opus"`},
	})
	require.NoError(t, err)

	req := baseRequest()
	req.Provider = "anthropic"
	req.Model = "claude-3-opus"
	err = g.Enforce(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-opus")
}

func TestModelAllowlistOverlayNarrows(t *testing.T) {
	g := New().WithModelAllowlistOverlay(map[string][]string{
		"openai": {"gpt-4.1-mini"},
	})
	req := baseRequest()
	req.Model = "gpt-4o"
	err := g.Enforce(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "excluded by policy overlay")

	req2 := baseRequest()
	require.NoError(t, g.Enforce(req2))
}

func TestModelAllowlistOverlayCannotWiden(t *testing.T) {
	g := New().WithModelAllowlistOverlay(map[string][]string{
		"openai": {"gpt-4.1-mini", "some-unlisted-model"},
	})
	req := baseRequest()
	req.Model = "some-unlisted-model"
	err := g.Enforce(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not allowlisted")
}

func TestEnforceSupplementaryCELCannotOverrideCoreRejection(t *testing.T) {
	g, err := New().WithCELExpressions([]CELExpression{
		{Name: "always-true", Expr: `true`},
	})
	require.NoError(t, err)

	req := baseRequest()
	req.Model = "not-a-real-model"
	err = g.Enforce(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not allowlisted")
}
