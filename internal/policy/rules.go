package policy

import (
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/detect"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/risk"
)

// Action is the final disposition of a prompt.
type Action string

const (
	ActionAllow   Action = "ALLOW"
	ActionRedact  Action = "REDACT"
	ActionRewrite Action = "REWRITE"
	ActionBlock   Action = "BLOCK"
)

// Static citations appended by the rule engine. These are canned references,
// independent of the similarity index.
var (
	secretReference = Reference{
		ID:      "policy-4.3",
		Section: "4.3",
		Title:   "Source Code & Secrets",
		Snippet: "Secrets (passwords, API keys, certificates) must never be shared with external tools.",
	}
	piiReference = Reference{
		ID:      "policy-5.1",
		Section: "5.1",
		Title:   "PII Handling",
		Snippet: "Email IDs and phone numbers are considered personal data and must be protected.",
	}
	financialReference = Reference{
		ID:      "policy-6.2",
		Section: "6.2",
		Title:   "Financial Data Confidentiality",
		Snippet: "Internal financial figures may not be shared with unapproved external services.",
	}
)

// EvaluateRules maps detection flags and the current risk level to a
// baseline action plus static citations. Citation order is fixed:
// secret, PII, financial.
func EvaluateRules(detections []detect.Detection, assessment risk.Assessment) (Action, []Reference) {
	var hasSecret, hasPII, hasFinancial bool
	for _, d := range detections {
		switch {
		case d.Type.IsSecret():
			hasSecret = true
		case d.Type.IsPII():
			hasPII = true
		case d.Type == detect.TypeFinancialData:
			hasFinancial = true
		}
	}

	var refs []Reference
	if hasSecret {
		refs = append(refs, secretReference)
	}
	if hasPII {
		refs = append(refs, piiReference)
	}
	if hasFinancial {
		refs = append(refs, financialReference)
	}

	switch {
	case hasSecret:
		return ActionBlock, refs
	case assessment.Level == risk.LevelHigh:
		return ActionRedact, refs
	case hasPII || hasFinancial:
		return ActionRedact, refs
	default:
		return ActionAllow, refs
	}
}
