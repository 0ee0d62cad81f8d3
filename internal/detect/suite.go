package detect

// Run executes every scanner over the prompt in fixed order: PII, secrets,
// financial. Scanners are independent; spans overlapping across families are
// all retained. Deduplication happens only inside the secret scanner.
func Run(text string) []Detection {
	var detections []Detection
	detections = append(detections, DetectPII(text)...)
	detections = append(detections, DetectSecrets(text)...)
	detections = append(detections, DetectFinancial(text)...)
	return detections
}
