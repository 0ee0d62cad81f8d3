package detect

import (
	"regexp"
	"strings"
)

// Provider-style secret shapes, matched anywhere in the text.
var secretPatterns = []struct {
	re   *regexp.Regexp
	typ  Type
	name string
}{
	// Stripe live/test keys
	{regexp.MustCompile(`\bsk_(live|test)_[0-9a-zA-Z]{8,}\b`), TypeSecretAPIKey, "STRIPE_KEY"},
	// AWS access key IDs
	{regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`), TypeSecretAWSKey, "AWS_ACCESS_KEY"},
	// Generic long high-entropy token (24+ base64-ish chars)
	{regexp.MustCompile(`\b[a-zA-Z0-9_\-]{24,}\b`), TypeSecretToken, "LONG_TOKEN"},
}

// Phrases that usually precede an inline secret.
var keyPhrases = []string{
	"api key",
	"secret key",
	"access key",
}

var tokenLikeRegex = regexp.MustCompile(`[A-Za-z0-9_\-]{6,}`)

const contextWindow = 100

// DetectSecrets runs the context-based and format-based secret scans.
// Results are deduplicated by (start, end, type); first occurrence wins.
func DetectSecrets(text string) []Detection {
	detections := detectContextSecrets(text)

	for _, p := range secretPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			detections = append(detections, Detection{
				Type:     p.typ,
				Severity: SeverityHigh,
				Span:     newSpan(text, loc[0], loc[1]),
				Metadata: map[string]string{"pattern": "KNOWN_PROVIDER", "shape": p.name},
			})
		}
	}

	type key struct {
		start, end int
		typ        Type
	}
	seen := make(map[key]struct{}, len(detections))
	unique := detections[:0]
	for _, d := range detections {
		k := key{d.Span.Start, d.Span.End, d.Type}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, d)
	}
	return unique
}

// detectContextSecrets finds trigger phrases like "api key is kk_123456" and
// reports the first token-like substring within a fixed lookahead window.
func detectContextSecrets(text string) []Detection {
	var detections []Detection
	lower := strings.ToLower(text)

	for _, phrase := range keyPhrases {
		from := 0
		for {
			idx := strings.Index(lower[from:], phrase)
			if idx < 0 {
				break
			}
			phraseEnd := from + idx + len(phrase)
			from = phraseEnd

			windowEnd := min(len(text), phraseEnd+contextWindow)
			loc := tokenLikeRegex.FindStringIndex(text[phraseEnd:windowEnd])
			if loc == nil {
				continue
			}

			detections = append(detections, Detection{
				Type:     TypeSecretAPIKey,
				Severity: SeverityHigh,
				Span:     newSpan(text, phraseEnd+loc[0], phraseEnd+loc[1]),
				Metadata: map[string]string{"pattern": "CONTEXT_API_KEY", "phrase": phrase},
			})
		}
	}
	return detections
}
