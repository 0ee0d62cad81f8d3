package detect

import "regexp"

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRegex = regexp.MustCompile(`\b(?:\+?\d{1,3})?[ \-]?\d{10}\b`)
)

// DetectPII scans for email addresses and phone numbers.
func DetectPII(text string) []Detection {
	detections := findSpans(emailRegex, text, TypePIIEmail, SeverityMedium)
	detections = append(detections, findSpans(phoneRegex, text, TypePIIPhone, SeverityMedium)...)
	return detections
}

func findSpans(pattern *regexp.Regexp, text string, t Type, sev Severity) []Detection {
	var detections []Detection
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		detections = append(detections, Detection{
			Type:     t,
			Severity: sev,
			Span:     newSpan(text, loc[0], loc[1]),
		})
	}
	return detections
}
