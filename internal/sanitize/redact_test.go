package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/detect"
)

func span(text string, start, end int) *detect.TextSpan {
	return &detect.TextSpan{Start: start, End: end, Text: text[start:end]}
}

func TestRedactEmptyDetectionsIsIdentity(t *testing.T) {
	text := "nothing to hide here"
	assert.Equal(t, text, Redact(text, nil))
	assert.Equal(t, text, Redact(text, []detect.Detection{}))
}

func TestRedactSingleSpan(t *testing.T) {
	text := "Contact me at john@example.com"
	detections := []detect.Detection{{
		Type:     detect.TypePIIEmail,
		Severity: detect.SeverityMedium,
		Span:     span(text, 14, 30),
	}}

	out := Redact(text, detections)
	assert.Equal(t, "Contact me at [REDACTED_EMAIL]", out)
}

func TestRedactMultipleSpansHighestFirst(t *testing.T) {
	text := "mail john@example.com or pay $500 now"
	detections := []detect.Detection{
		{Type: detect.TypePIIEmail, Span: span(text, 5, 21)},
		{Type: detect.TypeFinancialData, Span: span(text, 29, 33)},
	}

	out := Redact(text, detections)
	assert.Equal(t, "mail [REDACTED_EMAIL] or pay [REDACTED_AMOUNT] now", out)
}

func TestRedactSecretFamiliesShareToken(t *testing.T) {
	text := "key sk_live_abcd1234efgh end"
	for _, typ := range []detect.Type{
		detect.TypeSecretAPIKey,
		detect.TypeSecretAWSKey,
		detect.TypeSecretGeneric,
		detect.TypeSecretToken,
	} {
		out := Redact(text, []detect.Detection{{Type: typ, Span: span(text, 4, 24)}})
		assert.Equal(t, "key [REDACTED_SECRET] end", out)
	}
}

func TestRedactUnmappedTypeFallsBack(t *testing.T) {
	text := "a contract clause b"
	out := Redact(text, []detect.Detection{{Type: detect.TypeLegalContract, Span: span(text, 2, 17)}})
	assert.Equal(t, "a [REDACTED] b", out)
}

func TestRedactSkipsNilSpans(t *testing.T) {
	text := "plain text"
	out := Redact(text, []detect.Detection{{Type: detect.TypeOther, Span: nil}})
	assert.Equal(t, text, out)
}

// Overlapping spans are explicitly out of contract: the output is corrupted
// rather than merged. This pins the limitation so nobody "fixes" it silently
// in the engine instead of at the detector boundary.
func TestRedactOverlappingSpansAreOutOfContract(t *testing.T) {
	text := "abcdefghij"
	detections := []detect.Detection{
		{Type: detect.TypePIIEmail, Span: span(text, 0, 6)},
		{Type: detect.TypePIIPhone, Span: span(text, 4, 9)},
	}

	out := Redact(text, detections)
	assert.NotContains(t, out, "abcdef")
	assert.NotEqual(t, "[REDACTED_EMAIL][REDACTED_PHONE]j", out)
}
