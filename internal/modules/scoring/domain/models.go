// Package domain holds the pure data model of the Master Scoring Model:
// metrics with provenance, factor weights and the computed score.
// Nothing in this package touches infrastructure.
package domain

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Sentinel errors surfaced by the scoring engine and its collaborators.
var (
	// ErrInvalidWeight is returned when a weight profile contains a negative
	// weight or all weights are zero. Every other profile is normalized.
	ErrInvalidWeight = errors.New("invalid weight profile")

	// ErrInvalidInput is returned for structurally unusable inputs:
	// a non-positive target return or a negative dividend yield.
	ErrInvalidInput = errors.New("invalid scoring input")

	// ErrExtractionUnavailable is returned when the AI extraction collaborator
	// cannot produce metrics. Scoring itself never depends on it; callers fall
	// back to manual values and rubric defaults.
	ErrExtractionUnavailable = errors.New("ai extraction unavailable")
)

// Factor identifies one of the five scorable inputs.
type Factor string

const (
	FactorIndustryGrowth  Factor = "industry_growth"
	FactorNetProfitGrowth Factor = "net_profit_growth"
	FactorMOS             Factor = "mos"
	FactorDividendYield   Factor = "dividend_yield"
	FactorCompetitiveness Factor = "competitiveness"
)

// ScorableFactors returns the five factors in their display order.
// The order is fixed so that score breakdowns are stable for the UI.
func ScorableFactors() []Factor {
	return []Factor{
		FactorIndustryGrowth,
		FactorNetProfitGrowth,
		FactorMOS,
		FactorDividendYield,
		FactorCompetitiveness,
	}
}

// Provenance tags where a metric's current value came from.
// Manual always overrides ai-extracted and default.
type Provenance string

const (
	ProvenanceAI      Provenance = "ai-extracted"
	ProvenanceManual  Provenance = "manual"
	ProvenanceDefault Provenance = "default"
)

// Metric is a single raw metric value together with its provenance.
type Metric struct {
	Value      float64    `json:"value"`
	Provenance Provenance `json:"provenance"`
}

// MetricSet is the validated container of the seven raw per-stock metrics.
// Exactly these seven fields exist; each carries its own provenance.
type MetricSet struct {
	IndustryGrowth  Metric `json:"industry_growth"`
	NetProfitGrowth Metric `json:"net_profit_growth"`
	MOS             Metric `json:"mos"`
	DividendYield   Metric `json:"dividend_yield"`
	Competitiveness Metric `json:"competitiveness"`
	Beta            Metric `json:"beta"`
	TargetReturn    Metric `json:"target_return"`
}

// FactorValue returns the raw value for one of the five scorable factors.
func (m MetricSet) FactorValue(f Factor) float64 {
	switch f {
	case FactorIndustryGrowth:
		return m.IndustryGrowth.Value
	case FactorNetProfitGrowth:
		return m.NetProfitGrowth.Value
	case FactorMOS:
		return m.MOS.Value
	case FactorDividendYield:
		return m.DividendYield.Value
	case FactorCompetitiveness:
		return m.Competitiveness.Value
	}
	return 0
}

// Validate checks structural constraints on the metric values.
// Unusual but well-typed values (negative growth, extreme beta) are fine;
// only inputs the model cannot interpret at all are rejected.
func (m MetricSet) Validate() error {
	if m.TargetReturn.Value <= 0 {
		return fmt.Errorf("%w: target_return must be positive, got %v", ErrInvalidInput, m.TargetReturn.Value)
	}
	if m.DividendYield.Value < 0 {
		return fmt.Errorf("%w: dividend_yield must be >= 0, got %v", ErrInvalidInput, m.DividendYield.Value)
	}
	return nil
}

// MetricOverlay is a sparse set of raw metric values, one layer of the
// override resolution (AI-extracted or manual). A nil field means
// "not set in this layer", which is distinct from an explicit zero.
type MetricOverlay struct {
	IndustryGrowth  *float64 `json:"industry_growth,omitempty"`
	NetProfitGrowth *float64 `json:"net_profit_growth,omitempty"`
	MOS             *float64 `json:"mos,omitempty"`
	DividendYield   *float64 `json:"dividend_yield,omitempty"`
	Competitiveness *float64 `json:"competitiveness,omitempty"`
	Beta            *float64 `json:"beta,omitempty"`
	TargetReturn    *float64 `json:"target_return,omitempty"`
}

// WeightProfile maps the five scorable factors to user-chosen weights.
// The UI keeps them summing to 100, but the engine only relies on ratios.
type WeightProfile map[Factor]float64

// DefaultWeightProfile returns the recommended starting weights.
func DefaultWeightProfile() WeightProfile {
	return WeightProfile{
		FactorIndustryGrowth:  15,
		FactorNetProfitGrowth: 25,
		FactorMOS:             25,
		FactorDividendYield:   20,
		FactorCompetitiveness: 15,
	}
}

// Normalize returns weights scaled so they sum to 1.0, preserving relative
// ratios. Missing factors get weight zero. It fails with ErrInvalidWeight
// only if any weight is negative or all weights are zero; every other
// profile is normalized, never rejected.
func (w WeightProfile) Normalize() (map[Factor]float64, error) {
	factors := ScorableFactors()
	values := make([]float64, len(factors))
	for i, f := range factors {
		weight := w[f]
		if weight < 0 {
			return nil, fmt.Errorf("%w: weight for %s is negative (%v)", ErrInvalidWeight, f, weight)
		}
		values[i] = weight
	}

	total := floats.Sum(values)
	if total == 0 {
		return nil, fmt.Errorf("%w: all weights are zero", ErrInvalidWeight)
	}

	normalized := make(map[Factor]float64, len(factors))
	for i, f := range factors {
		normalized[f] = values[i] / total
	}
	return normalized, nil
}

// FactorContribution is one row of the score breakdown shown in the UI.
type FactorContribution struct {
	Factor       Factor  `json:"factor"`
	SubScore     float64 `json:"sub_score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Score is the result of one scoring computation. It is always derivable
// from its inputs and never persisted as a source of truth.
type Score struct {
	SubScores      map[Factor]float64   `json:"sub_scores"`
	WeightedSum    float64              `json:"weighted_sum"`
	RiskMultiplier float64              `json:"risk_multiplier"`
	FinalScore     float64              `json:"final_score"`
	Grade          string               `json:"grade"`
	Breakdown      []FactorContribution `json:"breakdown"`
	RubricVersion  string               `json:"rubric_version"`
}
