//go:build property
// +build property

package artifacts_test

import (
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
)

// TestRegistryAppendIsMonotonic verifies P2: the registry never shrinks and
// every previously-appended record remains readable after further appends.
func TestRegistryAppendIsMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("appending records never loses an earlier one", prop.ForAll(
		func(ids []string) bool {
			dir := t.TempDir()
			reg := artifacts.NewRegistry(filepath.Join(dir, "registry.jsonl"))

			seen := map[string]bool{}
			var appended []string
			for i, id := range ids {
				if id == "" || seen[id] {
					continue
				}
				seen[id] = true
				rec := artifacts.Record{
					ArtifactID:   id,
					Kind:         artifacts.KindRaw,
					CreatedAtUTC: "2026-01-01T00:00:00Z",
					SHA256:       fixedHash(i),
					ByteSize:     int64(len(id)),
					MediaType:    "text/plain",
				}
				if err := reg.Append(rec); err != nil {
					return false
				}
				appended = append(appended, id)

				for _, prior := range appended {
					ok, err := reg.Contains(prior, artifacts.KindRaw)
					if err != nil || !ok {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOfN(8, gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func fixedHash(i int) string {
	const hexDigits = "0123456789abcdef"
	b := make([]byte, 64)
	for j := range b {
		b[j] = hexDigits[(i+j)%16]
	}
	return string(b)
}
