package scorers

import (
	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
	"github.com/jomolabs/jomo/internal/modules/scoring/rubric"
)

// Grade bands on the final score.
const (
	gradeAThreshold = 80.0
	gradeBThreshold = 60.0
)

// ScoreEngine orchestrates the Master Scoring Model: five factor sub-scores,
// the normalized weight profile and the risk multiplier combine into the
// final 0-100 score with a full breakdown.
//
// The engine is stateless. Every call computes from the caller-supplied
// snapshots, so the UI may call it on every keystroke or slider tick without
// debouncing for correctness. Identical inputs always yield identical scores.
type ScoreEngine struct {
	rubric  *rubric.Rubric
	factors *FactorScorer
	risk    *RiskMultiplier
}

// NewScoreEngine creates a scoring engine bound to a rubric version.
func NewScoreEngine(r *rubric.Rubric) *ScoreEngine {
	return &ScoreEngine{
		rubric:  r,
		factors: NewFactorScorer(r),
		risk:    NewRiskMultiplier(r.Risk),
	}
}

// Rubric returns the rubric the engine was built with.
func (e *ScoreEngine) Rubric() *rubric.Rubric {
	return e.rubric
}

// ComputeScore computes the final score for a metric set and weight profile.
//
// Either a complete, consistent Score is returned or none is: validation
// errors (ErrInvalidInput, ErrInvalidWeight) surface before any part of the
// result is built, and the inputs are never mutated.
func (e *ScoreEngine) ComputeScore(m domain.MetricSet, w domain.WeightProfile) (*domain.Score, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	weights, err := w.Normalize()
	if err != nil {
		return nil, err
	}

	riskMult, err := e.risk.Compute(m.Beta.Value, m.TargetReturn.Value)
	if err != nil {
		return nil, err
	}

	factors := domain.ScorableFactors()
	subScores := make(map[domain.Factor]float64, len(factors))
	breakdown := make([]domain.FactorContribution, 0, len(factors))

	var weightedSum float64
	for _, f := range factors {
		sub := e.factors.Score(f, m.FactorValue(f))
		contribution := sub * weights[f]
		weightedSum += contribution

		subScores[f] = round1(sub)
		breakdown = append(breakdown, domain.FactorContribution{
			Factor:       f,
			SubScore:     round1(sub),
			Weight:       round2(weights[f]),
			Contribution: round2(contribution),
		})
	}

	final := clamp(weightedSum*riskMult, 0, 100)

	return &domain.Score{
		SubScores:      subScores,
		WeightedSum:    round1(weightedSum),
		RiskMultiplier: round2(riskMult),
		FinalScore:     round1(final),
		Grade:          gradeFor(final),
		Breakdown:      breakdown,
		RubricVersion:  e.rubric.Version,
	}, nil
}

// gradeFor maps a final score to its verdict band.
func gradeFor(score float64) string {
	switch {
	case score >= gradeAThreshold:
		return "A"
	case score >= gradeBThreshold:
		return "B"
	default:
		return "C"
	}
}
