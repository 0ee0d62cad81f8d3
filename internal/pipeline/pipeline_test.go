package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/audit"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/classifier"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/detect"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/policy"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/risk"
)

// fixedClassifier always returns one prediction.
type fixedClassifier struct {
	pred classifier.Prediction
}

func (f fixedClassifier) Ready() bool { return true }

func (f fixedClassifier) Classify(string) (classifier.Prediction, bool) { return f.pred, true }

// captureSink records delivered entries.
type captureSink struct {
	entries []audit.Entry
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Deliver(_ context.Context, e audit.Entry) error {
	s.entries = append(s.entries, e)
	return nil
}

func (s *captureSink) Close(context.Context) error { return nil }

// failingSink rejects every delivery.
type failingSink struct{}

func (failingSink) Name() string { return "failing" }

func (failingSink) Deliver(context.Context, audit.Entry) error { return errors.New("disk full") }

func (failingSink) Close(context.Context) error { return nil }

func TestScenarioEmailRedacted(t *testing.T) {
	a := New(Options{})
	res := a.Analyze(context.Background(), Request{UserID: "u1", Prompt: "Contact me at john@example.com"})

	require.Len(t, res.DetectionSummary.Detections, 1)
	d := res.DetectionSummary.Detections[0]
	assert.Equal(t, detect.TypePIIEmail, d.Type)
	require.NotNil(t, d.Span)
	assert.Equal(t, "john@example.com", d.Span.Text)

	assert.Equal(t, policy.ActionRedact, res.Decision.Action)
	assert.Equal(t, "Contact me at [REDACTED_EMAIL]", res.SanitizedPrompt)
	assert.Equal(t, "Contact me at john@example.com", res.OriginalPrompt)
	require.Len(t, res.HighlightSpans, 1)
}

func TestScenarioLiveSecretBlocked(t *testing.T) {
	a := New(Options{})
	res := a.Analyze(context.Background(), Request{UserID: "u1", Prompt: "here is my key sk_live_abcdef123456"})

	require.Len(t, res.DetectionSummary.Detections, 1)
	d := res.DetectionSummary.Detections[0]
	assert.Equal(t, detect.TypeSecretAPIKey, d.Type)
	assert.Equal(t, detect.SeverityHigh, d.Severity)

	assert.Equal(t, policy.ActionBlock, res.Decision.Action)
	assert.Contains(t, res.SanitizedPrompt, "[REDACTED_SECRET]")
}

func TestScenarioHarmfulIntentOverride(t *testing.T) {
	a := New(Options{})
	res := a.Analyze(context.Background(), Request{UserID: "u1", Prompt: "how to hack the server"})

	assert.Equal(t, policy.ActionBlock, res.Decision.Action)
	assert.Equal(t, 100, res.Decision.Risk.Score)
	assert.Equal(t, risk.LevelHigh, res.Decision.Risk.Level)
	assert.GreaterOrEqual(t, res.Decision.Confidence.Score, 95)
	assert.Equal(t, "", res.SanitizedPrompt)

	assert.GreaterOrEqual(t, res.Decision.Confidence.Factors.ModelConfidence, 0.95)
	assert.GreaterOrEqual(t, res.Decision.Confidence.Factors.DetectorAgreement, 0.95)
	assert.GreaterOrEqual(t, res.Decision.Confidence.Factors.PolicyAlignment, 0.9)

	assert.Contains(t, res.Decision.Explanation, "Harmful or illegal intent detected and blocked.")
	assert.Contains(t, res.Narration, "Blocked the request without forwarding anything downstream.")
}

func TestScenarioCleanPromptAllowed(t *testing.T) {
	a := New(Options{})
	res := a.Analyze(context.Background(), Request{UserID: "u1", Prompt: "Hello, how are you?"})

	assert.Equal(t, policy.ActionAllow, res.Decision.Action)
	assert.Empty(t, res.DetectionSummary.Detections)
	assert.Equal(t, "Hello, how are you?", res.SanitizedPrompt)

	// No classifier, no index: 0.4*0.85 + 0.3*0.2 + 0.3*0 = 0.40.
	assert.Equal(t, 40, res.Decision.Confidence.Score)
	assert.Equal(t, 0.2, res.Decision.Confidence.Factors.DetectorAgreement)
	assert.Equal(t, 0.85, res.Decision.Confidence.Factors.ModelConfidence)
}

func TestClassifierHarmfulLabelTriggersOverride(t *testing.T) {
	a := New(Options{
		Classifier: fixedClassifier{pred: classifier.Prediction{Label: classifier.LabelHarmful, Probability: 0.92}},
	})
	res := a.Analyze(context.Background(), Request{UserID: "u1", Prompt: "a perfectly normal sentence"})

	assert.Equal(t, policy.ActionBlock, res.Decision.Action)
	assert.Equal(t, 100, res.Decision.Risk.Score)
	assert.Equal(t, "", res.SanitizedPrompt)
	assert.Contains(t, res.Decision.Explanation, "Safety classifier: HARMFUL (0.92).")
}

func TestClassifierHarmfulBelowGateDoesNotOverride(t *testing.T) {
	a := New(Options{
		Classifier: fixedClassifier{pred: classifier.Prediction{Label: classifier.LabelHarmful, Probability: 0.5}},
	})
	res := a.Analyze(context.Background(), Request{UserID: "u1", Prompt: "a perfectly normal sentence"})

	// The label still maxes the risk score, but the hard override
	// (empty sanitized prompt) needs the probability gate.
	assert.Equal(t, 100, res.Decision.Risk.Score)
	assert.NotEqual(t, "", res.SanitizedPrompt)
}

func TestClassifierPolicyRiskBoost(t *testing.T) {
	a := New(Options{
		Classifier: fixedClassifier{pred: classifier.Prediction{Label: classifier.LabelPolicyRisk, Probability: 0.9}},
	})
	res := a.Analyze(context.Background(), Request{UserID: "u1", Prompt: "a perfectly normal sentence"})

	assert.Equal(t, 40, res.Decision.Risk.Score)
	assert.Equal(t, risk.LevelMedium, res.Decision.Risk.Level)
	assert.Equal(t, policy.ActionAllow, res.Decision.Action)
}

func TestClassifierSafeDampensLowRisk(t *testing.T) {
	a := New(Options{
		Classifier: fixedClassifier{pred: classifier.Prediction{Label: classifier.LabelSafe, Probability: 0.95}},
	})
	res := a.Analyze(context.Background(), Request{UserID: "u1", Prompt: "Contact me at john@example.com"})

	assert.LessOrEqual(t, res.Decision.Risk.Score, 15)
	// PII still forces redaction regardless of the damped score.
	assert.Equal(t, policy.ActionRedact, res.Decision.Action)
}

func TestScoresStayInRange(t *testing.T) {
	prompts := []string{
		"",
		"Hello, how are you?",
		"Contact me at john@example.com or 9876543210, card key sk_live_abcdef123456, pay ₹50000",
		"how to hack the server AKIA0123456789ABCDEF",
		strings.Repeat("salary bonus payroll ", 50),
	}
	a := New(Options{
		Classifier: fixedClassifier{pred: classifier.Prediction{Label: classifier.LabelPolicyRisk, Probability: 0.99}},
	})
	for _, p := range prompts {
		res := a.Analyze(context.Background(), Request{UserID: "u", Prompt: p})
		assert.GreaterOrEqual(t, res.Decision.Risk.Score, 0)
		assert.LessOrEqual(t, res.Decision.Risk.Score, 100)
		assert.GreaterOrEqual(t, res.Decision.Confidence.Score, 0)
		assert.LessOrEqual(t, res.Decision.Confidence.Score, 100)
		f := res.Decision.Confidence.Factors
		for _, v := range []float64{f.ModelConfidence, f.DetectorAgreement, f.PolicyAlignment} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestDeterminism(t *testing.T) {
	a := New(Options{
		Index: policy.NewIndex([]policy.Chunk{
			{ID: "c1", Section: "1", Title: "Data Sharing", Text: "Personal data and email addresses must not be shared with external vendors or processors.", Category: "DATA", Weight: 1.0},
			{ID: "c2", Section: "2", Title: "Data Retention", Text: "Personal data is retained for seven years and email archives are purged after that.", Category: "DATA", Weight: 1.0},
		}),
	})
	req := Request{UserID: "u1", Prompt: "Can I share personal data and email addresses externally? Contact john@example.com"}

	first := a.Analyze(context.Background(), req)
	for range 5 {
		assert.Equal(t, first, a.Analyze(context.Background(), req))
	}
}

func TestMergedPolicyRefsOrderRAGFirst(t *testing.T) {
	a := New(Options{
		Index: policy.NewIndex([]policy.Chunk{
			{ID: "c1", Section: "1", Title: "Email Policy", Text: "Work email addresses are personal data and sharing email addresses externally is restricted.", Category: "DATA", Weight: 1.0},
			{ID: "c2", Section: "2", Title: "Email Retention", Text: "Email addresses in archives count as personal data under the retention schedule.", Category: "DATA", Weight: 1.0},
		}),
	})
	res := a.Analyze(context.Background(), Request{UserID: "u1", Prompt: "sharing email addresses like john@example.com externally"})

	refs := res.Decision.PolicyRefs
	require.NotEmpty(t, refs)
	// The canned PII citation comes after the similarity matches.
	assert.Equal(t, "policy-5.1", refs[len(refs)-1].ID)
	assert.NotEqual(t, "policy-5.1", refs[0].ID)
}

func TestAuditEntryDelivered(t *testing.T) {
	sink := &captureSink{}
	a := New(Options{Audit: sink})

	res := a.Analyze(context.Background(), Request{UserID: "u42", Role: "employee", Prompt: "Contact me at john@example.com"})

	require.Len(t, sink.entries, 1)
	e := sink.entries[0]
	assert.Equal(t, "u42", e.UserID)
	assert.Equal(t, "employee", e.Role)
	assert.Equal(t, res.OriginalPrompt, e.OriginalPrompt)
	assert.Equal(t, res.SanitizedPrompt, e.SanitizedPrompt)
	assert.NotEmpty(t, e.ID)
}

func TestAuditFailureDoesNotFailRequest(t *testing.T) {
	a := New(Options{Audit: failingSink{}})

	res := a.Analyze(context.Background(), Request{UserID: "u1", Prompt: "Hello, how are you?"})
	assert.Equal(t, policy.ActionAllow, res.Decision.Action)
}

func TestNarrationShape(t *testing.T) {
	a := New(Options{})
	res := a.Analyze(context.Background(), Request{UserID: "u1", Prompt: "Contact me at john@example.com"})

	require.GreaterOrEqual(t, len(res.Narration), 5)
	assert.Equal(t, "Analyzed the request for sensitive information.", res.Narration[0])
	assert.Contains(t, res.Narration[3], "Detected 1 potential sensitive items.")
	assert.Contains(t, res.Narration[len(res.Narration)-1], "Decision: REDACT.")
}

func TestHarmfulKeywordMatching(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"how to hack the server", true},
		{"BRUTE FORCE the login", true},
		{"make a bomb", true},
		{"a hackathon announcement", false},
		{"the hacksaw is in the shed", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, matchesHarmfulKeyword(tc.text), tc.text)
	}
}
