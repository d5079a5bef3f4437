package luxpwm

import (
	"fmt"
	"math"
)

// AdaptiveRange slowly follows successive bounds estimates by exponential
// blending. Its span is always positive.
type AdaptiveRange struct {
	live  Bounds
	alpha float64
}

// NewAdaptiveRange returns a range starting at nominal and moving towards each
// update by a fraction alpha.
func NewAdaptiveRange(nominal Bounds, alpha float64) (*AdaptiveRange, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("luxpwm: could not create adaptive range with alpha %v: %w", alpha, ErrInvalidAlpha)
	}
	if !(nominal.Max > nominal.Min) {
		return nil, fmt.Errorf("luxpwm: could not create adaptive range [%v, %v]: %w", nominal.Min, nominal.Max, ErrInvalidRange)
	}

	return &AdaptiveRange{
		live:  nominal,
		alpha: alpha,
	}, nil
}

// Update blends b into the live range and returns the result.
func (r *AdaptiveRange) Update(b Bounds) Bounds {
	r.live.Min = (1-r.alpha)*r.live.Min + r.alpha*b.Min
	r.live.Max = (1-r.alpha)*r.live.Max + r.alpha*b.Max

	// also catches NaN
	if !(r.live.Max > r.live.Min+spanEpsilon) {
		r.live.Max = r.live.Min + minSpan
	}

	return r.live
}

// Bounds returns the live range.
func (r *AdaptiveRange) Bounds() Bounds {
	return r.live
}

// MapDuty maps x from b onto [0, dutyMax] linearly, rounding to the nearest
// step and clamping outside b.
func MapDuty(x float64, b Bounds, dutyMax int) int {
	if !(b.Max > b.Min) || math.IsNaN(x) {
		return 0
	}

	t := (x - b.Min) / (b.Max - b.Min)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	return clampDuty(int(math.Round(t*float64(dutyMax))), dutyMax)
}

// ScaleADC maps a raw ADC reading in [0, rawMax] onto [0, dutyMax] with
// integer arithmetic, the way a potentiometer input is scaled.
func ScaleADC(raw, rawMax, dutyMax int) int {
	if rawMax <= 0 {
		return 0
	}
	return clampDuty(raw*dutyMax/rawMax, dutyMax)
}

func clampDuty(d, dutyMax int) int {
	if d < 0 {
		return 0
	}
	if d > dutyMax {
		return dutyMax
	}
	return d
}
