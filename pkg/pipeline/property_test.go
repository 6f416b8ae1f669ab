//go:build property
// +build property

package pipeline_test

import (
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/pipeline"
)

// TestIngestReinvocationIsIdempotent verifies P3: re-running Ingest with
// the same explicit artifact id and text never appends a second record or
// changes the stored bytes.
func TestIngestReinvocationIsIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("re-invoking ingest with the same id is a byte-identical no-op", prop.ForAll(
		func(text string, n int) bool {
			if text == "" {
				return true
			}

			dir := t.TempDir()
			layout := artifacts.NewLayout(dir)
			store := artifacts.NewStore(dir)
			reg := artifacts.NewRegistry(layout.RegistryPath())

			const ts = "2026-01-01T00:00:00Z"
			const id = "prop-raw-1"

			var lastSize int64 = -1
			runs := 1 + (n % 4)
			for i := 0; i < runs; i++ {
				_, err := pipeline.Ingest(store, reg, pipeline.IngestInput{
					Text: text, CreatedAtUTC: ts, ArtifactID: id,
				})
				if err != nil {
					return false
				}
				size, err := artifacts.FileSize(layout.RawPath(id))
				if err != nil {
					return false
				}
				if lastSize != -1 && size != lastSize {
					return false
				}
				lastSize = size
			}

			records, err := reg.Load()
			if err != nil {
				return false
			}
			count := 0
			for _, r := range records {
				if r.ArtifactID == id && r.Kind == artifacts.KindRaw {
					count++
				}
			}
			return count == 1
		},
		gen.AlphaString(),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
