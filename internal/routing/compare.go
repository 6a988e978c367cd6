package routing

import "github.com/saferoute-service/internal/domain"

// riskEpsilon guards the percentage denominator when the baseline route has
// near-zero risk.
const riskEpsilon = 1e-9

// Compare derives the human-facing statistics between a candidate route and
// the pure-distance baseline. Negative values mean the candidate is worse
// than the baseline and are reported as-is.
func Compare(candidate, baseline *domain.RoutePlan) domain.RouteComparison {
	cmp := domain.RouteComparison{
		DistanceIncreaseM: candidate.TotalDistanceM - baseline.TotalDistanceM,
		RiskReduction:     baseline.TotalRisk - candidate.TotalRisk,
		DetourRatio:       1.0,
	}

	if baseline.TotalDistanceM > 0 {
		cmp.DistanceIncreasePercent = cmp.DistanceIncreaseM / baseline.TotalDistanceM * 100
		cmp.DetourRatio = candidate.TotalDistanceM / baseline.TotalDistanceM
	}

	denom := baseline.TotalRisk
	if denom < riskEpsilon {
		denom = riskEpsilon
	}
	if baseline.TotalRisk == 0 && candidate.TotalRisk == 0 {
		cmp.RiskReductionPercent = 0
	} else {
		cmp.RiskReductionPercent = cmp.RiskReduction / denom * 100
	}

	return cmp
}
