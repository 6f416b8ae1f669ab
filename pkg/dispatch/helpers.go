package dispatch

import "fmt"

// toolInput is the generic JSON-object shape every tool receives; handlers
// extract their own typed fields out of it. This mirrors how the original
// tool-call surface passed arguments as a JSON object per call.
type toolInput = map[string]any

func strField(in toolInput, key string) string {
	v, ok := in[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func floatField(in toolInput, key string) float64 {
	v, ok := in[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func intField(in toolInput, key string) int {
	v, ok := in[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func stringSliceField(in toolInput, key string) []string {
	v, ok := in[key]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func requireField(in toolInput, key string) (string, error) {
	s := strField(in, key)
	if s == "" {
		return "", fmt.Errorf("dispatch: tool_input missing required field %q", key)
	}
	return s, nil
}
