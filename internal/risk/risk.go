package risk

import (
	"fmt"

	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/detect"
)

// Level buckets the numeric risk score.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Thresholds are the two configurable cut points between levels.
type Thresholds struct {
	Low  int
	High int
}

// DefaultThresholds match the shipped configuration.
var DefaultThresholds = Thresholds{Low: 30, High: 70}

// Assessment holds the clamped score, its derived level, and a short
// explanation. Score adjustments go through Adjust so the clamp and the
// level stay consistent.
type Assessment struct {
	Score       int    `json:"score"`
	Level       Level  `json:"level"`
	Explanation string `json:"explanation"`

	thresholds Thresholds
}

var severityWeights = map[detect.Severity]int{
	detect.SeverityLow:      5,
	detect.SeverityMedium:   15,
	detect.SeverityHigh:     30,
	detect.SeverityCritical: 40,
}

const unknownSeverityWeight = 10

// Compute derives the base risk from a detection list: each detection adds
// its severity weight, clamped to [0,100].
func Compute(detections []detect.Detection, thresholds Thresholds) Assessment {
	score := 0
	for _, d := range detections {
		w, ok := severityWeights[d.Severity]
		if !ok {
			w = unknownSeverityWeight
		}
		score += w
	}
	score = clamp(score)

	a := Assessment{
		Score:       score,
		Explanation: fmt.Sprintf("Computed risk score %d based on %d detections.", score, len(detections)),
		thresholds:  thresholds,
	}
	a.Level = a.levelFor(score)
	return a
}

// Adjustment is one named step in the boost fold. Apply receives the current
// score and returns the adjusted one; the fold re-clamps after every step.
type Adjustment struct {
	Name  string
	Apply func(score int) int
}

// Adjust folds the adjustments over the score in order, re-clamping and
// re-deriving the level after each step. It returns the names of the steps
// that changed the score, for the decision audit trail.
func (a *Assessment) Adjust(steps ...Adjustment) []string {
	var fired []string
	for _, step := range steps {
		if step.Apply == nil {
			continue
		}
		next := clamp(step.Apply(a.Score))
		if next != a.Score {
			fired = append(fired, step.Name)
		}
		a.Score = next
		a.Level = a.levelFor(a.Score)
	}
	return fired
}

// ForceHigh pins the assessment to the hard-override state: score 100, HIGH.
func (a *Assessment) ForceHigh() {
	a.Score = 100
	a.Level = LevelHigh
}

func (a *Assessment) levelFor(score int) Level {
	t := a.thresholds
	if t.Low == 0 && t.High == 0 {
		t = DefaultThresholds
	}
	switch {
	case score < t.Low:
		return LevelLow
	case score < t.High:
		return LevelMedium
	default:
		return LevelHigh
	}
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
