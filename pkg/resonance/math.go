package resonance

import (
	"math"
	"sort"
)

// DecayWeight computes the recency discount for an entry ageDays old using
// the default time constant. Strictly decreasing, DecayWeight(0) == 1,
// asymptotically approaches 0, never negative.
func DecayWeight(ageDays float64) float64 {
	return DecayWeightTau(ageDays, TimeDecayTauDays)
}

// DecayWeightTau is DecayWeight with an explicit time constant.
func DecayWeightTau(ageDays, tauDays float64) float64 {
	if ageDays < 0 {
		ageDays = 0
	}
	if tauDays <= 0 {
		tauDays = TimeDecayTauDays
	}
	return math.Exp(-ageDays / tauDays)
}

// Percentile computes the p-th percentile (p in [0,1]) of values using
// linear interpolation between order statistics: sort ascending, index
// p*(n-1), interpolate between the two bracketing ranks. Returns 0 for an
// empty input.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	// Sort a copy; callers keep their ordering.
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}

	idx := p * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}

	frac := idx - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Clamp01 clips x to [0, 1]. Negative cosine is treated as "unrelated",
// not "opposed".
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0.0
	}
	if x > 1 {
		return 1.0
	}
	return x
}
