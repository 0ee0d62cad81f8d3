package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/audit"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/classifier"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/detect"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/policy"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/risk"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/sanitize"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/telemetry"
)

// Request is one prompt to analyze. UserID and Role pass through to the
// audit record untouched.
type Request struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
	Prompt string `json:"prompt"`
}

// Decision is the final disposition of a prompt. Immutable once assembled.
type Decision struct {
	Action      policy.Action      `json:"action"`
	Risk        risk.Assessment    `json:"risk"`
	Confidence  risk.Confidence    `json:"confidence"`
	PolicyRefs  []policy.Reference `json:"policy_refs"`
	Explanation string             `json:"explanation"`
}

// Result is the full analysis bundle returned to the caller.
type Result struct {
	SanitizedPrompt  string            `json:"sanitized_prompt"`
	OriginalPrompt   string            `json:"original_prompt"`
	Decision         Decision          `json:"decision"`
	DetectionSummary detect.Summary    `json:"detection_summary"`
	Narration        []string          `json:"safety_timeline"`
	HighlightSpans   []detect.TextSpan `json:"highlight_spans"`
}

// harmfulProbabilityGate is the minimum classifier probability for a HARMFUL
// label to trigger the hard override on its own.
const harmfulProbabilityGate = 0.7

// defaultModelConfidence feeds the confidence engine when no classifier is
// loaded.
const defaultModelConfidence = 0.85

// harmfulKeywords trip the rule-based harmful-intent check. Matched as plain
// substrings of the lowercased prompt.
var harmfulKeywords = []string{
	// hacking / cybercrime
	"hack ", " hacking", "hack into", "hack the system", "hack the server",
	"how to hack", "crack wifi", "crack password", "bruteforce", "brute force",
	"keylogger", "malware", "ransomware", "rootkit", "backdoor",
	"sql injection", "xss attack", "csrf attack", "ddos", "dos attack",
	"bypass login", "bypass authentication", "steal data", "steal credentials",
	"phishing email", "phishing attack",

	// physical harm / violence
	"kill someone", "kill him", "kill her", "how to kill",
	"murder someone", "commit murder", "stab someone",
	"shoot someone", "school shooting", "mass shooting",
	"plant a bomb", "make a bomb", "bomb attack",
	"terrorist attack", "join terrorist", "assassinate",
	"poison someone", "poison her", "poison him",
}

// Options configure an Analyzer. Zero values get safe defaults: a nil
// classifier becomes the noop fallback, a nil sink discards, zero thresholds
// use the shipped defaults.
type Options struct {
	Index      *policy.Index
	Classifier classifier.Classifier
	Audit      audit.Sink
	Telemetry  *telemetry.Provider
	Thresholds risk.Thresholds
	TopK       int
	MinScore   float64
}

// Analyzer owns the decision protocol for one prompt at a time. All injected
// collaborators are immutable after construction, so a single Analyzer serves
// concurrent requests without locking.
type Analyzer struct {
	index      *policy.Index
	clf        classifier.Classifier
	sink       audit.Sink
	tel        *telemetry.Provider
	thresholds risk.Thresholds
	topK       int
	minScore   float64
}

func New(opts Options) *Analyzer {
	a := &Analyzer{
		index:      opts.Index,
		clf:        opts.Classifier,
		sink:       opts.Audit,
		tel:        opts.Telemetry,
		thresholds: opts.Thresholds,
		topK:       opts.TopK,
		minScore:   opts.MinScore,
	}
	if a.index == nil {
		a.index = policy.NewIndex(nil)
	}
	if a.clf == nil {
		a.clf = classifier.NewNoop()
	}
	if a.sink == nil {
		a.sink = audit.Discard{}
	}
	if a.thresholds == (risk.Thresholds{}) {
		a.thresholds = risk.DefaultThresholds
	}
	if a.topK <= 0 {
		a.topK = policy.DefaultTopK
	}
	if a.minScore <= 0 {
		a.minScore = policy.DefaultMinScore
	}
	return a
}

// Analyze runs the full decision protocol over one prompt: classifier and
// harmful-intent check, detectors, policy similarity, risk with boosts, rule
// evaluation, hard override, confidence, redaction, narration, and the
// best-effort audit hand-off.
func (a *Analyzer) Analyze(ctx context.Context, req Request) Result {
	start := time.Now()
	text := req.Prompt

	pred, hasPred := a.clf.Classify(text)

	harmful := matchesHarmfulKeyword(text) ||
		(hasPred && pred.Label == classifier.LabelHarmful && pred.Probability >= harmfulProbabilityGate)

	detections := detect.Run(text)
	summary := detect.Summarize(detections)
	highlights := detect.Spans(detections)

	policyRes := a.index.Matches(text, a.topK, a.minScore)
	alignment := policyRes.Alignment

	assessment := risk.Compute(detections, a.thresholds)
	assessment.Adjust(a.adjustments(alignment, pred, hasPred)...)

	action, ruleRefs := policy.EvaluateRules(detections, assessment)

	refs := make([]policy.Reference, 0, len(policyRes.Matches)+len(ruleRefs))
	for _, m := range policyRes.Matches {
		refs = append(refs, m.Reference())
	}
	refs = append(refs, ruleRefs...)

	if harmful {
		assessment.ForceHigh()
		action = policy.ActionBlock
	}

	modelConf := defaultModelConfidence
	if hasPred {
		modelConf = pred.Probability
	}
	confidence := risk.ComputeConfidence(detections, alignment, modelConf)
	if harmful {
		confidence.FloorForOverride()
	}

	sanitized := text
	if action == policy.ActionRedact || action == policy.ActionBlock {
		sanitized = sanitize.Redact(text, detections)
	}
	if harmful {
		// Nothing leaves the gateway on harmful intent.
		sanitized = ""
	}

	decision := Decision{
		Action:      action,
		Risk:        assessment,
		Confidence:  confidence,
		PolicyRefs:  refs,
		Explanation: explanation(action, assessment, confidence, alignment, harmful, pred, hasPred),
	}

	result := Result{
		SanitizedPrompt:  sanitized,
		OriginalPrompt:   text,
		Decision:         decision,
		DetectionSummary: summary,
		Narration:        narration(action, assessment, len(refs), len(detections), harmful, pred, hasPred),
		HighlightSpans:   highlights,
	}

	a.deliverAudit(ctx, req, result)
	a.tel.RecordAnalysis(ctx, string(action), len(detections), float64(time.Since(start).Microseconds())/1000.0)

	return result
}

// adjustments builds the ordered risk boost fold: alignment first, then the
// classifier label.
func (a *Analyzer) adjustments(alignment float64, pred classifier.Prediction, hasPred bool) []risk.Adjustment {
	steps := []risk.Adjustment{
		{
			Name: "policy_alignment_boost",
			Apply: func(score int) int {
				return score + int(20*alignment)
			},
		},
	}
	if !hasPred {
		return steps
	}

	switch pred.Label {
	case classifier.LabelHarmful:
		steps = append(steps, risk.Adjustment{
			Name:  "classifier_harmful",
			Apply: func(score int) int { return max(score, 100) },
		})
	case classifier.LabelPolicyRisk:
		steps = append(steps, risk.Adjustment{
			Name:  "classifier_policy_risk",
			Apply: func(score int) int { return max(score, min(100, score+40)) },
		})
	case classifier.LabelSensitive:
		steps = append(steps, risk.Adjustment{
			Name:  "classifier_sensitive",
			Apply: func(score int) int { return max(score, min(100, score+25)) },
		})
	case classifier.LabelSafe:
		steps = append(steps, risk.Adjustment{
			Name: "classifier_safe_damp",
			Apply: func(score int) int {
				if pred.Probability > 0.8 && score < 20 {
					return min(score, 15)
				}
				return score
			},
		})
	}
	return steps
}

func matchesHarmfulKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range harmfulKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func explanation(action policy.Action, assessment risk.Assessment, confidence risk.Confidence, alignment float64, harmful bool, pred classifier.Prediction, hasPred bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Action: %s. Risk %d (%s). Confidence %d%%. Policy alignment %.2f.",
		action, assessment.Score, assessment.Level, confidence.Score, alignment)
	if harmful {
		b.WriteString(" Harmful or illegal intent detected and blocked.")
	}
	if hasPred {
		fmt.Fprintf(&b, " Safety classifier: %s (%.2f).", pred.Label, pred.Probability)
	}
	return b.String()
}

func narration(action policy.Action, assessment risk.Assessment, policyCount, detectionCount int, harmful bool, pred classifier.Prediction, hasPred bool) []string {
	steps := []string{
		"Analyzed the request for sensitive information.",
		fmt.Sprintf("Matched against %d relevant policies.", policyCount),
		fmt.Sprintf("Risk score: %d (%s).", assessment.Score, assessment.Level),
		fmt.Sprintf("Detected %d potential sensitive items.", detectionCount),
	}
	if hasPred {
		steps = append(steps, fmt.Sprintf("Safety classifier prediction: %s (%.2f).", pred.Label, pred.Probability))
	}
	if harmful {
		steps = append(steps,
			"Detected harmful or illegal intent.",
			"Blocked the request without forwarding anything downstream.")
	} else {
		steps = append(steps, fmt.Sprintf("Decision: %s. Sanitized prompt prepared.", action))
	}
	return steps
}

// deliverAudit hands the bundle to the audit sink. Failures are logged and
// swallowed: the request must succeed even when its trail cannot be written.
func (a *Analyzer) deliverAudit(ctx context.Context, req Request, res Result) {
	entry := audit.NewEntry(req.UserID, req.Role, res.OriginalPrompt, res.SanitizedPrompt,
		res.Decision, res.DetectionSummary, res.Narration)
	if err := a.sink.Deliver(ctx, entry); err != nil {
		log.Printf("audit: deliver to %s failed: %v", a.sink.Name(), err)
	}
}
