//go:build property
// +build property

package canonicalize_test

import (
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
)

// TestCanonicalIdempotence verifies P1: canonicalizing the canonical bytes
// of a value reproduces the same bytes.
func TestCanonicalIdempotence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Bytes(v) is a fixed point of canonicalization", prop.ForAll(
		func(keys []string, values []string) bool {
			obj := make(map[string]any)
			for i := 0; i < len(keys) && i < len(values); i++ {
				if keys[i] != "" {
					obj[keys[i]] = values[i]
				}
			}

			first, err := canonicalize.Bytes(obj)
			if err != nil {
				return true
			}

			var reDecoded map[string]any
			if err := json.Unmarshal(first, &reDecoded); err != nil {
				return false
			}

			second, err := canonicalize.Bytes(reDecoded)
			if err != nil {
				return false
			}

			return string(first) == string(second)
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// TestCanonicalKeyPermutationInvariance verifies P1: the canonical encoding
// of an object does not depend on the order its keys were inserted in.
func TestCanonicalKeyPermutationInvariance(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("key insertion order never affects canonical bytes", prop.ForAll(
		func(a, b, c string) bool {
			forward := map[string]any{"a": a, "b": b, "c": c}
			reversed := map[string]any{"c": c, "b": b, "a": a}

			fwdBytes, err1 := canonicalize.Bytes(forward)
			revBytes, err2 := canonicalize.Bytes(reversed)
			if err1 != nil || err2 != nil {
				return err1 != nil && err2 != nil
			}
			return string(fwdBytes) == string(revBytes)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestContentHashMatchesKeyPermutation verifies P1 end to end through the
// hash, not just the intermediate canonical bytes.
func TestContentHashMatchesKeyPermutation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("ContentHash is invariant under map key permutation", prop.ForAll(
		func(x, y string) bool {
			h1, err1 := canonicalize.ContentHash(map[string]any{"x": x, "y": y})
			h2, err2 := canonicalize.ContentHash(map[string]any{"y": y, "x": x})
			if err1 != nil || err2 != nil {
				return err1 != nil && err2 != nil
			}
			return h1 == h2
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
