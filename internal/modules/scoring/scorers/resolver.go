package scorers

import (
	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
	"github.com/jomolabs/jomo/internal/modules/scoring/rubric"
)

// ResolveMetric decides, for a single metric, whether to use the AI-extracted
// value, the user's manual value, or the rubric default.
//
// Precedence: a manual value wins unconditionally once set, regardless of
// whether an AI value is present or more recent; otherwise the AI value wins;
// otherwise the default is used and tagged as such. "Present" means the
// pointer is non-nil, so an explicit manual zero still overrides.
func ResolveMetric(ai, manual *float64, def float64) domain.Metric {
	if manual != nil {
		return domain.Metric{Value: *manual, Provenance: domain.ProvenanceManual}
	}
	if ai != nil {
		return domain.Metric{Value: *ai, Provenance: domain.ProvenanceAI}
	}
	return domain.Metric{Value: def, Provenance: domain.ProvenanceDefault}
}

// ResolveMetricSet applies ResolveMetric to all seven fields independently.
// Setting one metric manually never affects the provenance of the other six.
func ResolveMetricSet(ai, manual domain.MetricOverlay, r *rubric.Rubric) domain.MetricSet {
	return domain.MetricSet{
		IndustryGrowth:  ResolveMetric(ai.IndustryGrowth, manual.IndustryGrowth, r.DefaultMetric(domain.FactorIndustryGrowth)),
		NetProfitGrowth: ResolveMetric(ai.NetProfitGrowth, manual.NetProfitGrowth, r.DefaultMetric(domain.FactorNetProfitGrowth)),
		MOS:             ResolveMetric(ai.MOS, manual.MOS, r.DefaultMetric(domain.FactorMOS)),
		DividendYield:   ResolveMetric(ai.DividendYield, manual.DividendYield, r.DefaultMetric(domain.FactorDividendYield)),
		Competitiveness: ResolveMetric(ai.Competitiveness, manual.Competitiveness, r.DefaultMetric(domain.FactorCompetitiveness)),
		Beta:            ResolveMetric(ai.Beta, manual.Beta, r.DefaultBeta),
		// Target return is user-supplied by definition; an AI value is still
		// honored if the user has not set one, the fallback is the rubric's
		// market-return assumption.
		TargetReturn: ResolveMetric(ai.TargetReturn, manual.TargetReturn, r.Risk.TargetPerUnitBeta),
	}
}
