package inference

import "fmt"

// ProviderTokenCaps is the deterministic, network-free provider token cap
// table, matching adam_os/tools/inference_provider_select.py exactly.
var ProviderTokenCaps = map[string]int{
	"openai":    8192,
	"anthropic": 8192,
}

// SelectProviderCap returns the max_tokens cap for provider, or an error if
// the provider is unknown. It makes no network calls and is a pure lookup,
// supplying the provider_max_tokens_cap value the policy gate requires
// callers to inject.
func SelectProviderCap(provider string) (int, error) {
	tokenCap, ok := ProviderTokenCaps[provider]
	if !ok {
		return 0, fmt.Errorf("inference: no provider token cap configured for %q", provider)
	}
	return tokenCap, nil
}
