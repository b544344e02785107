// Package rubric defines the versioned scoring configuration: the breakpoint
// tables that map raw metrics to sub-scores, the neutral defaults used when a
// metric is absent, and the risk multiplier curve parameters.
//
// The rubric is data, not code. The engine receives it at construction time,
// so alternative rubric versions can be tested side by side and the published
// rubric can change without touching engine logic.
package rubric

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
)

// Breakpoint is one knot of a factor's piecewise-linear mapping.
type Breakpoint struct {
	Value float64 `yaml:"value" json:"value"`
	Score float64 `yaml:"score" json:"score"`
}

// RiskConfig parameterizes the risk multiplier curve.
//
// The curve is a plateau with linear falloff: betas within Tolerance of the
// ideal beta for the user's target return receive MaxMultiplier; beyond that
// the multiplier decreases linearly over Falloff until it reaches
// MinMultiplier. Beta is clamped to [BetaFloor, BetaCeiling] before use so
// extreme inputs can never push the multiplier outside its bounds.
type RiskConfig struct {
	MinMultiplier float64 `yaml:"min_multiplier" json:"min_multiplier"`
	MaxMultiplier float64 `yaml:"max_multiplier" json:"max_multiplier"`
	// TargetPerUnitBeta converts a target return (%) into the beta considered
	// ideal for it: idealBeta = targetReturn / TargetPerUnitBeta. With the
	// default of 12 a market-beta stock (1.0) is ideal for a 12% target.
	TargetPerUnitBeta float64 `yaml:"target_per_unit_beta" json:"target_per_unit_beta"`
	Tolerance         float64 `yaml:"tolerance" json:"tolerance"`
	Falloff           float64 `yaml:"falloff" json:"falloff"`
	BetaFloor         float64 `yaml:"beta_floor" json:"beta_floor"`
	BetaCeiling       float64 `yaml:"beta_ceiling" json:"beta_ceiling"`
}

// Rubric is a complete, versioned scoring configuration.
type Rubric struct {
	Version  string                         `yaml:"version" json:"version"`
	Factors  map[domain.Factor][]Breakpoint `yaml:"factors" json:"factors"`
	Defaults map[domain.Factor]float64      `yaml:"defaults" json:"defaults"`
	// DefaultBeta is used when neither AI extraction nor the user supplied a
	// beta. 1.0 means "moves with the market".
	DefaultBeta float64    `yaml:"default_beta" json:"default_beta"`
	Risk        RiskConfig `yaml:"risk" json:"risk"`
}

// Default returns the published v1 rubric.
//
// The factor tables follow the original Master Scoring Model bands, expressed
// as knots of a piecewise-linear curve so slider drags move sub-scores
// smoothly instead of jumping between bands.
func Default() *Rubric {
	return &Rubric{
		Version: "v1",
		Factors: map[domain.Factor][]Breakpoint{
			// 3yr industry CAGR (%): negative growth bottoms out, 20%+ maxes out
			domain.FactorIndustryGrowth: {
				{Value: -10, Score: 0},
				{Value: 0, Score: 60},
				{Value: 10, Score: 80},
				{Value: 20, Score: 100},
			},
			// 5yr net profit CAGR (%)
			domain.FactorNetProfitGrowth: {
				{Value: -10, Score: 0},
				{Value: 0, Score: 40},
				{Value: 5, Score: 60},
				{Value: 10, Score: 80},
				{Value: 20, Score: 100},
			},
			// Margin of safety (%): negative = trading above fair value
			domain.FactorMOS: {
				{Value: -20, Score: 0},
				{Value: 0, Score: 50},
				{Value: 10, Score: 80},
				{Value: 20, Score: 100},
			},
			// Dividend yield (%)
			domain.FactorDividendYield: {
				{Value: 0, Score: 0},
				{Value: 3, Score: 60},
				{Value: 5, Score: 80},
				{Value: 8, Score: 100},
			},
			// Qualitative competitiveness on a 0-10 scale
			domain.FactorCompetitiveness: {
				{Value: 0, Score: 0},
				{Value: 10, Score: 100},
			},
		},
		Defaults: map[domain.Factor]float64{
			domain.FactorIndustryGrowth:  5.0,
			domain.FactorNetProfitGrowth: 5.0,
			domain.FactorMOS:             0.0,
			domain.FactorDividendYield:   2.0,
			domain.FactorCompetitiveness: 5.0,
		},
		DefaultBeta: 1.0,
		Risk: RiskConfig{
			MinMultiplier:     0.5,
			MaxMultiplier:     1.0,
			TargetPerUnitBeta: 12.0,
			Tolerance:         0.6,
			Falloff:           1.0,
			BetaFloor:         -1.0,
			BetaCeiling:       5.0,
		},
	}
}

// Load reads a rubric from a YAML file and validates it.
func Load(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a YAML rubric.
func Parse(data []byte) (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse rubric YAML: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks that the rubric is usable: every scorable factor has a
// monotonic breakpoint table with scores in [0,100], and the risk curve
// parameters are internally consistent.
func (r *Rubric) Validate() error {
	if r.Version == "" {
		return fmt.Errorf("rubric version is required")
	}

	for _, f := range domain.ScorableFactors() {
		bps, ok := r.Factors[f]
		if !ok || len(bps) < 2 {
			return fmt.Errorf("factor %s needs at least 2 breakpoints", f)
		}
		if !sort.SliceIsSorted(bps, func(i, j int) bool { return bps[i].Value < bps[j].Value }) {
			return fmt.Errorf("factor %s breakpoints must be sorted by value", f)
		}
		for i, bp := range bps {
			if bp.Score < 0 || bp.Score > 100 {
				return fmt.Errorf("factor %s breakpoint %d score %v outside [0,100]", f, i, bp.Score)
			}
			if i > 0 {
				if bp.Value == bps[i-1].Value {
					return fmt.Errorf("factor %s has duplicate breakpoint value %v", f, bp.Value)
				}
				if bp.Score < bps[i-1].Score {
					return fmt.Errorf("factor %s breakpoints must be non-decreasing in score", f)
				}
			}
		}
	}

	rc := r.Risk
	if rc.MinMultiplier <= 0 || rc.MaxMultiplier < rc.MinMultiplier {
		return fmt.Errorf("risk multiplier bounds invalid: min=%v max=%v", rc.MinMultiplier, rc.MaxMultiplier)
	}
	if rc.TargetPerUnitBeta <= 0 {
		return fmt.Errorf("risk target_per_unit_beta must be positive, got %v", rc.TargetPerUnitBeta)
	}
	if rc.Tolerance < 0 || rc.Falloff <= 0 {
		return fmt.Errorf("risk tolerance/falloff invalid: tolerance=%v falloff=%v", rc.Tolerance, rc.Falloff)
	}
	if rc.BetaCeiling <= rc.BetaFloor {
		return fmt.Errorf("risk beta clamp range invalid: floor=%v ceiling=%v", rc.BetaFloor, rc.BetaCeiling)
	}

	return nil
}

// DefaultMetric returns the rubric-defined neutral value for a factor.
func (r *Rubric) DefaultMetric(f domain.Factor) float64 {
	return r.Defaults[f]
}
