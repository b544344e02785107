package scorers

import (
	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
	"github.com/jomolabs/jomo/internal/modules/scoring/rubric"
)

// FactorScorer converts each raw metric into a normalized 0-100 sub-score
// using the rubric's breakpoint table for that factor.
//
// The mapping is total and monotonic non-decreasing: every real input maps to
// a defined sub-score, values between breakpoints are linearly interpolated,
// and values outside the table clamp to the boundary scores. It is a pure
// function of (factor, value) for a given rubric version.
type FactorScorer struct {
	rubric *rubric.Rubric
}

// NewFactorScorer creates a factor scorer bound to a rubric version.
func NewFactorScorer(r *rubric.Rubric) *FactorScorer {
	return &FactorScorer{rubric: r}
}

// Score maps a raw metric value to its 0-100 sub-score.
// Unknown factors score 0; the engine only ever passes scorable factors.
func (fs *FactorScorer) Score(factor domain.Factor, value float64) float64 {
	bps := fs.rubric.Factors[factor]
	if len(bps) == 0 {
		return 0
	}

	// Clamp at the extremes of the table
	if value <= bps[0].Value {
		return clamp(bps[0].Score, 0, 100)
	}
	last := bps[len(bps)-1]
	if value >= last.Value {
		return clamp(last.Score, 0, 100)
	}

	// Linear interpolation between the surrounding breakpoints
	for i := 1; i < len(bps); i++ {
		if value <= bps[i].Value {
			lo, hi := bps[i-1], bps[i]
			t := (value - lo.Value) / (hi.Value - lo.Value)
			return clamp(lo.Score+t*(hi.Score-lo.Score), 0, 100)
		}
	}

	return clamp(last.Score, 0, 100)
}
