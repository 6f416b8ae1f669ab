package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/marcoevans693-eng/adamos-v0/pkg/artifacts"
	"github.com/marcoevans693-eng/adamos-v0/pkg/canonicalize"
)

// Classification is the sanitize stage's per-statement label.
type Classification string

const (
	ClassSourceBased Classification = "SOURCE-BASED"
	ClassQuestion    Classification = "QUESTION"
	ClassAssumption  Classification = "ASSUMPTION"
)

var hedgeWords = []string{
	"assume", "assumption", "probably", "likely", "unlikely", "maybe", "might",
	"i think", "we think", "it seems", "seems", "estimate", "guess", "roughly",
	"approximately", "perhaps",
}

// questionStartRe matches an interrogative opener, mirroring
// adam_os/tools/artifact_sanitize.py's _Q_START pattern.
var questionStartRe = regexp.MustCompile(`(?i)^(what|why|how|when|where|who|which|can|could|should|would|do|does|did|is|are|am|may|might)\b`)

var wsRe = regexp.MustCompile(`\s+`)

// Statement is one classified line of the SANITIZED artifact.
type Statement struct {
	Text           string         `json:"text"`
	Classification Classification `json:"classification"`
}

// SanitizeInput is the tool_input for artifact.sanitize.
type SanitizeInput struct {
	RawArtifactID string
	CreatedAtUTC  string
	ArtifactID    string // optional
}

type SanitizeResult struct {
	ArtifactID string `json:"artifact_id"`
	SHA256     string `json:"sha256"`
	Path       string `json:"path"`
}

// Sanitize reads the RAW artifact at rawArtifactID, NFC-normalizes it,
// splits it into statements on sentence-ending punctuation, classifies
// each, and writes the result as NDJSON (one Statement per line) to
// <root>/sanitized/<artifact_id>.jsonl, registering a SANITIZED record
// whose parent is the raw artifact.
func Sanitize(store *artifacts.Store, reg *artifacts.Registry, in SanitizeInput) (SanitizeResult, error) {
	artifactID := deriveChildID(in.ArtifactID, in.RawArtifactID, "sanitized")
	path := store.Path("sanitized", artifactID+".jsonl")

	already, err := reg.Contains(artifactID, artifacts.KindSanitized)
	if err != nil {
		return SanitizeResult{}, err
	}
	if already {
		sha, err := artifacts.HashFile(path)
		if err != nil {
			return SanitizeResult{}, err
		}
		return SanitizeResult{ArtifactID: artifactID, SHA256: sha, Path: path}, nil
	}

	rawPath := store.Path("raw", in.RawArtifactID+".txt")
	rawBytes, err := store.ReadFile(rawPath)
	if err != nil {
		return SanitizeResult{}, err
	}

	normalized := norm.NFC.String(string(rawBytes))
	statements := SplitStatements(normalized)

	var buf []byte
	for _, s := range statements {
		line, err := canonicalize.Bytes(s)
		if err != nil {
			return SanitizeResult{}, err
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}

	if err := store.WriteFile(path, buf); err != nil {
		return SanitizeResult{}, err
	}

	sha := artifacts.HashBytes(buf)

	if err := reg.Append(artifacts.Record{
		ArtifactID:        artifactID,
		Kind:              artifacts.KindSanitized,
		CreatedAtUTC:      in.CreatedAtUTC,
		SHA256:            sha,
		ByteSize:          int64(len(buf)),
		MediaType:         "application/x-ndjson",
		ParentArtifactIDs: []string{in.RawArtifactID},
		Notes:             "sanitize",
	}); err != nil {
		return SanitizeResult{}, err
	}

	return SanitizeResult{ArtifactID: artifactID, SHA256: sha, Path: path}, nil
}

// SplitStatements splits text into trimmed, non-empty statements and
// classifies each. It mirrors _split_statements's two-level split: text is
// first split on newlines, then each line is split on sentence-ending
// punctuation followed by whitespace. Go's RE2 engine has no lookbehind, so
// the sentence-boundary split is a hand-written scan rather than a direct
// regex port.
func SplitStatements(text string) []Statement {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var out []Statement
	for _, line := range strings.Split(normalized, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, part := range splitSentences(line) {
			s := collapseWS(part)
			if s == "" {
				continue
			}
			out = append(out, Statement{Text: s, Classification: classify(s)})
		}
	}
	return out
}

// splitSentences splits line at the first whitespace run following a
// sentence-ending '.', '!' or '?', consuming the whitespace as the
// separator — the lookbehind-free equivalent of
// re.split(r"(?<=[.!?])\s+", line).
func splitSentences(line string) []string {
	runes := []rune(line)
	var parts []string
	var cur strings.Builder

	i := 0
	for i < len(runes) {
		r := runes[i]
		cur.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && isSpace(runes[i+1]) {
			parts = append(parts, cur.String())
			cur.Reset()
			i++
			for i < len(runes) && isSpace(runes[i]) {
				i++
			}
			continue
		}
		i++
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

func collapseWS(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

func classify(s string) Classification {
	if strings.HasSuffix(s, "?") || questionStartRe.MatchString(s) {
		return ClassQuestion
	}
	lower := strings.ToLower(s)
	for _, hw := range hedgeWords {
		if strings.Contains(lower, hw) {
			return ClassAssumption
		}
	}
	return ClassSourceBased
}
