// Package spatial holds the pure numeric routines the proximal/spatial
// side of the engine needs: weighted receptive-field sampling, permanence
// initialization, duty-cycle bookkeeping, and inhibition-radius statistics.
// These are free functions operating on plain slices so network.Column and
// network.Region can call them without creating an import cycle back into
// the structural package.
package spatial

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// SampleWithoutReplacement draws count indices from [0,len(weights))
// without replacement, weighted by weights (a weight of 0 excludes a
// candidate): pick a uniform value in [0, sum(weights)), linearly scan
// to the weighted pick, then swap the picked element into a "used"
// prefix and subtract its weight from the running sum.
func SampleWithoutReplacement(rng *rand.Rand, weights []float64, count int) []int {
	n := len(weights)
	if count > n {
		count = n
	}
	idx := make([]int, n)
	w := make([]float64, n)
	for i := range idx {
		idx[i] = i
		w[i] = weights[i]
	}

	total := 0.0
	for _, v := range w {
		total += v
	}

	picked := make([]int, 0, count)
	used := 0
	for len(picked) < count && total > 0 {
		target := rng.Float64() * total
		running := 0.0
		pick := used
		for i := used; i < n; i++ {
			running += w[i]
			if running > target {
				pick = i
				break
			}
			pick = i
		}

		picked = append(picked, idx[pick])
		total -= w[pick]

		idx[pick], idx[used] = idx[used], idx[pick]
		w[pick], w[used] = w[used], w[pick]
		used++
	}

	sort.Ints(picked)
	return picked
}

// SampleNormalPermanence draws a permanence value from a normal
// distribution centered on mean with the given standard deviation,
// clamped to [0,1].
func SampleNormalPermanence(rng *rand.Rand, mean, stddev float64) float64 {
	dist := distuv.Normal{Mu: mean, Sigma: stddev, Src: rng}
	v := dist.Rand()
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
