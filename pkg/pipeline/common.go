package pipeline

import "strings"

// deriveChildID returns explicit if non-empty, else a deterministic id
// derived from parentID and stage so repeated invocations with the same
// parent always compute the same child artifact id without needing a
// clock read or random generator — idempotent stage re-invocation depends
// on this determinism.
func deriveChildID(explicit, parentID, stage string) string {
	if id := strings.TrimSpace(explicit); id != "" {
		return id
	}
	return parentID + "--" + stage
}
