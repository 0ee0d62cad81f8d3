package risk

import (
	"math"

	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/detect"
)

// ConfidenceFactors are the explainable inputs behind a confidence score,
// each in [0,1].
type ConfidenceFactors struct {
	ModelConfidence   float64 `json:"model_confidence"`
	DetectorAgreement float64 `json:"detector_agreement"`
	PolicyAlignment   float64 `json:"policy_alignment"`
}

// Confidence is the combined score in [0,100] plus its factors.
type Confidence struct {
	Score   int               `json:"score"`
	Factors ConfidenceFactors `json:"factors"`
}

// detectorFamilies is the number of main detector families the agreement
// factor is normalized against.
const detectorFamilies = 4.0

// noDetectionAgreement is the agreement floor when nothing fired: low, but
// not zero, since silence is not certainty of safety.
const noDetectionAgreement = 0.2

const (
	weightModel     = 0.4
	weightAgreement = 0.3
	weightAlignment = 0.3
)

// ComputeConfidence combines classifier confidence, detector agreement, and
// policy alignment into one explainable score.
func ComputeConfidence(detections []detect.Detection, policyAlignment, modelConfidence float64) Confidence {
	agreement := noDetectionAgreement
	if len(detections) > 0 {
		types := make(map[detect.Type]struct{}, len(detections))
		for _, d := range detections {
			types[d.Type] = struct{}{}
		}
		agreement = math.Min(1.0, float64(len(types))/detectorFamilies)
	}

	factors := ConfidenceFactors{
		ModelConfidence:   modelConfidence,
		DetectorAgreement: agreement,
		PolicyAlignment:   policyAlignment,
	}

	score := weightModel*factors.ModelConfidence +
		weightAgreement*factors.DetectorAgreement +
		weightAlignment*factors.PolicyAlignment

	return Confidence{
		Score:   int(math.Round(score * 100)),
		Factors: factors,
	}
}

// FloorForOverride raises the score and factors to the harmful-intent
// minimums without ever lowering an already-higher value.
func (c *Confidence) FloorForOverride() {
	c.Score = max(c.Score, 95)
	c.Factors.ModelConfidence = math.Max(c.Factors.ModelConfidence, 0.95)
	c.Factors.DetectorAgreement = math.Max(c.Factors.DetectorAgreement, 0.95)
	c.Factors.PolicyAlignment = math.Max(c.Factors.PolicyAlignment, 0.9)
}
