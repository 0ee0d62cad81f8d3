package detect

// Type identifies the family of sensitive content a detection belongs to.
type Type string

const (
	TypePIIEmail      Type = "PII_EMAIL"
	TypePIIPhone      Type = "PII_PHONE"
	TypeSecretAPIKey  Type = "SECRET_API_KEY"
	TypeSecretAWSKey  Type = "SECRET_AWS_KEY"
	TypeSecretGeneric Type = "SECRET_GENERIC"
	TypeSecretToken   Type = "SECRET_TOKEN_LONG"
	TypeFinancialData Type = "FINANCIAL_DATA"
	TypeLegalContract Type = "LEGAL_CONTRACT"
	TypeOther         Type = "OTHER"
)

// IsSecret reports whether the type belongs to the secret family.
func (t Type) IsSecret() bool {
	switch t {
	case TypeSecretAPIKey, TypeSecretAWSKey, TypeSecretGeneric, TypeSecretToken:
		return true
	}
	return false
}

// IsPII reports whether the type belongs to the PII family.
func (t Type) IsPII() bool {
	return t == TypePIIEmail || t == TypePIIPhone
}

// Severity grades how damaging a single detection is.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// TextSpan is a half-open [Start, End) slice of the original prompt.
// Invariant: 0 <= Start < End <= len(prompt) and Text == prompt[Start:End].
type TextSpan struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Detection is a single flagged occurrence of sensitive content.
// Span is nil for detections without a concrete location.
type Detection struct {
	Type     Type              `json:"type"`
	Severity Severity          `json:"severity"`
	Span     *TextSpan         `json:"span,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Summary bundles all detections of one request with per-type counts.
type Summary struct {
	Detections []Detection  `json:"detections"`
	Counts     map[Type]int `json:"detection_counts"`
}

// Summarize builds the per-type occurrence counts for a detection list.
func Summarize(detections []Detection) Summary {
	if detections == nil {
		detections = []Detection{}
	}
	counts := make(map[Type]int, len(detections))
	for _, d := range detections {
		counts[d.Type]++
	}
	return Summary{Detections: detections, Counts: counts}
}

// Spans returns every non-nil detection span in execution order.
func Spans(detections []Detection) []TextSpan {
	spans := make([]TextSpan, 0, len(detections))
	for _, d := range detections {
		if d.Span != nil {
			spans = append(spans, *d.Span)
		}
	}
	return spans
}

func newSpan(text string, start, end int) *TextSpan {
	return &TextSpan{Start: start, End: end, Text: text[start:end]}
}
