package scorers

import (
	"fmt"
	"math"

	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
	"github.com/jomolabs/jomo/internal/modules/scoring/rubric"
)

// RiskMultiplier derives a scalar adjustment from stock beta relative to the
// user's target return. Stocks whose volatility is disproportionate to the
// desired return are penalized; stable stocks held to an ambitious target are
// penalized gently rather than harshly.
//
// The curve is continuous in both inputs so slider drags produce smooth score
// movement: betas within Tolerance of the ideal beta for the target sit on a
// plateau at MaxMultiplier, then the multiplier falls off linearly to
// MinMultiplier over the Falloff width. Beta is clamped before use, so the
// result is always within [MinMultiplier, MaxMultiplier].
type RiskMultiplier struct {
	cfg rubric.RiskConfig
}

// NewRiskMultiplier creates a risk multiplier with the given curve parameters.
func NewRiskMultiplier(cfg rubric.RiskConfig) *RiskMultiplier {
	return &RiskMultiplier{cfg: cfg}
}

// Compute returns the multiplier for (beta, targetReturn).
// A target return of zero or negative is meaningless for this ratio and
// fails with ErrInvalidInput. Beta has no validity bounds of its own;
// extreme values are clamped to [BetaFloor, BetaCeiling] first.
func (rm *RiskMultiplier) Compute(beta, targetReturn float64) (float64, error) {
	if targetReturn <= 0 {
		return 0, fmt.Errorf("%w: target_return must be positive, got %v", domain.ErrInvalidInput, targetReturn)
	}

	b := clamp(beta, rm.cfg.BetaFloor, rm.cfg.BetaCeiling)
	ideal := targetReturn / rm.cfg.TargetPerUnitBeta

	// Distance beyond the plateau around the ideal beta
	excess := math.Abs(b-ideal) - rm.cfg.Tolerance
	if excess <= 0 {
		return rm.cfg.MaxMultiplier, nil
	}

	frac := math.Min(1, excess/rm.cfg.Falloff)
	return rm.cfg.MaxMultiplier - (rm.cfg.MaxMultiplier-rm.cfg.MinMultiplier)*frac, nil
}

// Bounds returns the configured [min, max] multiplier range.
func (rm *RiskMultiplier) Bounds() (float64, float64) {
	return rm.cfg.MinMultiplier, rm.cfg.MaxMultiplier
}
