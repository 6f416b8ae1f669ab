package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/marcoevans693-eng/adamos-v0/pkg/policy"
)

// policyOverlayFile is the shape of an ADAMOS_POLICY_FILE YAML document.
// allowed_models narrows the compiled-in per-provider model allowlist; a
// provider key absent from the file leaves that provider's allowlist
// untouched.
type policyOverlayFile struct {
	AllowedModels map[string][]string `yaml:"allowed_models"`
}

// BuildGate constructs the policy gate for this deployment: the compiled-in
// allowlists, narrowed by an optional YAML overlay file. Overlay parse
// failures are returned rather than silently ignored, since a broken
// overlay file must never silently fall back to the wider default
// allowlist.
func (c *Config) BuildGate() (*policy.Gate, error) {
	gate := policy.New()
	if c.PolicyOverlayPath == "" {
		return gate, nil
	}

	data, err := os.ReadFile(c.PolicyOverlayPath)
	if err != nil {
		return nil, err
	}

	var overlay policyOverlayFile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, err
	}
	if len(overlay.AllowedModels) == 0 {
		return gate, nil
	}
	return gate.WithModelAllowlistOverlay(overlay.AllowedModels), nil
}
