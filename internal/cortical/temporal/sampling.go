// Package temporal holds the pure algorithmic routines the distal/temporal
// side of the engine needs: reservoir sampling of learning cells and the
// 1-in-k tie-break used when picking a best-matching cell. These are free
// functions over plain slices so network.Cell and network.Column can call
// them without creating an import cycle back into the structural package.
package temporal

import "math/rand"

// ReservoirSubstitute draws target indices from [0,n) without
// replacement by Vitter-style substitution: for i from n-target to
// n-1, pick p = rand()%(i+1) and swap positions p and i, so a
// candidate already swapped into the chosen suffix is substituted by
// the one at position i instead.
func ReservoirSubstitute(rng *rand.Rand, n, target int) []int {
	if target <= 0 || n <= 0 {
		return nil
	}
	if target > n {
		target = n
	}

	chosen := make([]int, n)
	for i := range chosen {
		chosen[i] = i
	}

	start := n - target
	if start < 0 {
		start = 0
	}
	for i := start; i < n; i++ {
		p := rng.Intn(i + 1)
		chosen[i], chosen[p] = chosen[p], chosen[i]
	}

	return chosen[start:]
}

// OneOfK implements reservoir sampling of size 1: call it once per
// candidate seen, in order, passing the 1-based rank k of the
// candidate just seen. It returns true exactly when that candidate
// should replace the currently held pick, with the guarantee that
// after n calls each of the n candidates has been picked with equal
// probability 1/n.
func OneOfK(rng *rand.Rand, k int) bool {
	return rng.Intn(k) == 0
}
