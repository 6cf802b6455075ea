// Package sim is the stochastic simulation core: single-game outcomes,
// standings accumulation with NHL tie-break ordering, playoff qualification,
// best-of-7 bracket resolution, and the Monte Carlo aggregator that ties
// them together. Everything here is pure in-memory computation over an
// injected random source; data acquisition lives in the adapter packages.
package sim

import (
	"math"
	"math/rand"
)

// poissonSample draws from Poisson(lambda) using the given source.
// Inverse-transform sampling is exact and fast for hockey-sized means;
// the normal approximation only kicks in for means no real game produces.
func poissonSample(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	if lambda < 12 {
		l := math.Exp(-lambda)
		k := 0
		p := 1.0
		for p > l {
			k++
			p *= rng.Float64()
		}
		return k - 1
	}
	return int(math.Max(0, rng.NormFloat64()*math.Sqrt(lambda)+lambda+0.5))
}
