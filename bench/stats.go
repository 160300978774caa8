// Package bench measures pipeline throughput: repeated timed runs after a
// warmup phase, summarized per stage with mean, median, p99, and standard
// deviation. It backs cmd/literoom-bench and is usable directly from
// tests.
package bench

import (
	"math"
	"sort"
)

// Summary holds the cross-run statistics for one measured quantity, in
// milliseconds.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	P99    float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes summary statistics over millisecond samples. An
// empty slice yields a zero Summary.
func Summarize(samples []float64) Summary {
	n := len(samples)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)

	var sum float64
	for _, s := range sorted {
		sum += s
	}
	mean := sum / float64(n)

	var sumSquares float64
	for _, s := range sorted {
		diff := s - mean
		sumSquares += diff * diff
	}

	return Summary{
		Count:  n,
		Mean:   mean,
		Median: percentile(sorted, 0.50),
		P99:    percentile(sorted, 0.99),
		StdDev: math.Sqrt(sumSquares / float64(n)),
		Min:    sorted[0],
		Max:    sorted[n-1],
	}
}

// percentile reads the pct quantile from an already sorted slice.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * pct)
	return sorted[idx]
}
