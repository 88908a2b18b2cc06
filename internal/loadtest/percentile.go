package loadtest

import "math"

// Percentile returns the p-th percentile (p in [0, 100]) of values using
// linear interpolation between the two nearest ranks. The input slice must
// already be sorted ascending.
//
// An empty input returns NaN so "no data" is distinguishable from any real
// latency value.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	k := float64(len(sorted)-1) * (p / 100.0)
	f := math.Floor(k)
	c := math.Min(f+1, float64(len(sorted)-1))
	if c == f {
		return sorted[int(f)]
	}
	return sorted[int(f)]*(c-k) + sorted[int(c)]*(k-f)
}
