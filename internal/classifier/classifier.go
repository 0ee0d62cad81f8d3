package classifier

// Label is one of the closed set of safety classes the model predicts.
type Label string

const (
	LabelSafe       Label = "SAFE"
	LabelSensitive  Label = "SENSITIVE"
	LabelPolicyRisk Label = "POLICY_RISK"
	LabelHarmful    Label = "HARMFUL"
)

// Prediction is the model's top class and its probability.
type Prediction struct {
	Label       Label   `json:"label"`
	Probability float64 `json:"probability"`
}

// Classifier is the safety-classifier capability consumed by the pipeline.
// Classify returns ok=false when no model is loaded; callers must treat that
// as a neutral signal, never as a low-confidence prediction.
type Classifier interface {
	Ready() bool
	Classify(text string) (Prediction, bool)
}

// Noop is the not-loaded fallback: never ready, never predicts.
type Noop struct{}

// NewNoop returns a classifier that always reports not-loaded.
func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Ready() bool { return false }

func (n *Noop) Classify(string) (Prediction, bool) { return Prediction{}, false }
