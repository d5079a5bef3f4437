package luxpwm

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Bounds is a [Min, Max] range of filtered readings.
type Bounds struct {
	Min float64
	Max float64
}

// Span returns Max - Min.
func (b Bounds) Span() float64 {
	return b.Max - b.Min
}

// BoundsEstimator computes outlier resistant bounds. It reuses its scratch
// buffers between calls and is not concurrency safe.
type BoundsEstimator struct {
	sorted []float64
	dev    []float64
}

// RobustBounds is a convenience wrapper around a fresh BoundsEstimator.
func RobustBounds(samples []float64, fallback Bounds) Bounds {
	var e BoundsEstimator
	return e.Estimate(samples, fallback)
}

// Estimate returns the min and max of the samples lying within 3σ of their
// median, with σ = 1.4826·MAD. When more than half of the samples share the
// median the MAD is zero and σ is taken from the mean absolute deviation
// instead. When σ is still negligible every sample is kept. An empty input
// returns fallback unchanged.
//
// With the mean absolute deviation fallback, samples that differ from a
// majority sharing the median are rejected even when they are close to it:
// [10 ×9, 10.5] yields {10, 10}, and a step reaching fewer than half of the
// window, [100 ×10, 200 ×3], yields {100, 100} until the step holds the
// median.
func (e *BoundsEstimator) Estimate(samples []float64, fallback Bounds) Bounds {
	if len(samples) == 0 {
		return fallback
	}

	e.sorted = append(e.sorted[:0], samples...)
	med := medianInPlace(e.sorted)

	e.dev = e.dev[:0]
	for _, v := range samples {
		e.dev = append(e.dev, math.Abs(v-med))
	}
	sigma := madScale * medianInPlace(e.dev)
	if sigma <= sigmaTolerance {
		sigma = meanADScale * floats.Sum(e.dev) / float64(len(e.dev))
	}
	threshold := inlierThreshold * sigma

	inMin, inMax := math.Inf(1), math.Inf(-1)
	inliers := 0
	for _, v := range samples {
		if sigma > sigmaTolerance && math.Abs(v-med) > threshold {
			continue
		}
		inliers++
		inMin = math.Min(inMin, v)
		inMax = math.Max(inMax, v)
	}

	if inliers == 0 {
		return Bounds{Min: med, Max: med}
	}
	return Bounds{Min: inMin, Max: inMax}
}

// Median returns the median of values without modifying them. It returns 0
// for an empty slice.
func Median(values []float64) float64 {
	return medianInPlace(slices.Clone(values))
}

// MAD returns the median absolute deviation of values around median.
func MAD(values []float64, median float64) float64 {
	dev := make([]float64, len(values))
	for i, v := range values {
		dev[i] = math.Abs(v - median)
	}
	return medianInPlace(dev)
}

// medianInPlace sorts values and returns their median.
func medianInPlace(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	slices.Sort(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return 0.5 * (values[n/2-1] + values[n/2])
}
