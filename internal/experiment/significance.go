package experiment

import (
	"math"
	"sort"
)

// SignificanceFunction maps an absolute z-score to a confidence level in
// [0, 1). Pluggable so the step approximation can be swapped for an accurate
// CDF without touching the evaluator.
type SignificanceFunction func(z float64) float64

// StepConfidence is the legacy step approximation: fixed thresholds above
// z=1.645, linear below. It is not a true p-value.
func StepConfidence(z float64) float64 {
	switch {
	case z > 2.58:
		return 0.99
	case z > 1.96:
		return 0.95
	case z > 1.645:
		return 0.90
	default:
		return z / 2.58
	}
}

// NormalConfidence is the accurate two-sided confidence 2*Phi(z)-1 computed
// from the normal CDF.
func NormalConfidence(z float64) float64 {
	return math.Erf(z / math.Sqrt2)
}

// zScore computes the two-proportion z statistic for (c1/n1) vs (c2/n2).
// Degenerate inputs (empty samples, zero standard error) yield 0 rather than
// NaN so the evaluator can proceed.
func zScore(c1, n1, c2, n2 int64) float64 {
	if n1 == 0 || n2 == 0 {
		return 0
	}
	p1 := float64(c1) / float64(n1)
	p2 := float64(c2) / float64(n2)
	pooled := float64(c1+c2) / float64(n1+n2)

	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(n1) + 1/float64(n2)))
	if se == 0 {
		return 0
	}
	return math.Abs(p1-p2) / se
}

// leaderboard returns the variants ordered by conversion rate, best first.
func leaderboard(variants []*Variant) []*Variant {
	sorted := make([]*Variant, len(variants))
	copy(sorted, variants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ConversionRate() > sorted[j].ConversionRate()
	})
	return sorted
}

// evaluate runs the significance check for an experiment: below the minimum
// sample size it reports no confidence; with fewer than two variants the
// single variant wins outright. It returns the current leader, the confidence
// level, and whether the experiment should complete.
func evaluate(e *Experiment, sig SignificanceFunction) (winner *Variant, confidence float64, complete bool) {
	if e.TotalImpressions() < e.MinSampleSize {
		return nil, e.Confidence, false
	}
	if len(e.Variants) == 0 {
		return nil, 0, false
	}
	if len(e.Variants) == 1 {
		return e.Variants[0], 1, true
	}

	sorted := leaderboard(e.Variants)
	best, runnerUp := sorted[0], sorted[1]

	z := zScore(best.Conversions, best.Impressions, runnerUp.Conversions, runnerUp.Impressions)
	confidence = sig(z)
	return best, confidence, confidence > 0.95
}
