package spatial

import "gonum.org/v1/gonum/floats"

// UpdateEMA advances an exponential moving average of a per-step
// boolean observation: hit is 1 if the observed event occurred this
// step, 0 otherwise.
func UpdateEMA(current, alpha float64, hit bool) float64 {
	obs := 0.0
	if hit {
		obs = 1.0
	}
	return current*(1-alpha) + alpha*obs
}

// MaxAmong returns the maximum value among the given neighbor duty
// cycles, or 0 if neighbors is empty.
func MaxAmong(neighbors []float64) float64 {
	if len(neighbors) == 0 {
		return 0
	}
	return floats.Max(neighbors)
}

// Mean returns the arithmetic mean of values, or 0 if values is empty.
// The automatic inhibition radius is the mean over all columns of the
// max distance-to-input among their connected proximal synapses.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values) / float64(len(values))
}
