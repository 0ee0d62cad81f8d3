package sanitize

import (
	"sort"

	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/detect"
)

// placeholders maps detection types to their redaction tokens.
var placeholders = map[detect.Type]string{
	detect.TypePIIEmail:      "[REDACTED_EMAIL]",
	detect.TypePIIPhone:      "[REDACTED_PHONE]",
	detect.TypeSecretAPIKey:  "[REDACTED_SECRET]",
	detect.TypeSecretAWSKey:  "[REDACTED_SECRET]",
	detect.TypeSecretGeneric: "[REDACTED_SECRET]",
	detect.TypeSecretToken:   "[REDACTED_SECRET]",
	detect.TypeFinancialData: "[REDACTED_AMOUNT]",
}

const fallbackPlaceholder = "[REDACTED]"

// Redact replaces every detected span with its type-specific placeholder.
// Spans are applied highest offset first so earlier offsets stay valid.
// Overlapping spans are outside the contract and corrupt the output.
func Redact(text string, detections []detect.Detection) string {
	type spanned struct {
		span detect.TextSpan
		typ  detect.Type
	}

	spans := make([]spanned, 0, len(detections))
	for _, d := range detections {
		if d.Span != nil {
			spans = append(spans, spanned{span: *d.Span, typ: d.Type})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].span.Start > spans[j].span.Start
	})

	out := text
	for _, s := range spans {
		replacement, ok := placeholders[s.typ]
		if !ok {
			replacement = fallbackPlaceholder
		}
		out = out[:s.span.Start] + replacement + out[s.span.End:]
	}
	return out
}
