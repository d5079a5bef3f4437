package luxpwm

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// FilterKind selects the smoothing stage of the controller.
type FilterKind int

// Available filters.
const (
	SMA FilterKind = iota
	EMA
	SavitzkyGolay
)

func (k FilterKind) String() string {
	switch k {
	case SMA:
		return "sma"
	case EMA:
		return "ema"
	case SavitzkyGolay:
		return "sg"
	}
	return fmt.Sprintf("FilterKind(%d)", int(k))
}

// ParseFilterKind parses "sma", "ema" or "sg" (case insensitive).
func ParseFilterKind(s string) (FilterKind, error) {
	switch strings.ToLower(s) {
	case "sma":
		return SMA, nil
	case "ema":
		return EMA, nil
	case "sg", "savgol", "savitzky-golay":
		return SavitzkyGolay, nil
	}
	return 0, fmt.Errorf("luxpwm: unknown filter %q", s)
}

// Filter smooths raw readings. The zero value is not usable; create one with
// NewSMA, NewEMA or NewSavitzkyGolay.
type Filter struct {
	kind FilterKind

	// SMA and Savitzky-Golay keep the last len(window) raw samples.
	window []float64
	pos    int
	count  int
	sum    float64

	alpha       float64
	initialized bool
	state       float64

	coeffs  []float64
	ordered []float64
}

// NewSMA returns a simple moving average over the last n samples.
func NewSMA(n int) (*Filter, error) {
	if n < 1 {
		return nil, fmt.Errorf("luxpwm: could not create SMA filter of %d: %w", n, ErrInvalidCapacity)
	}

	return &Filter{
		kind:   SMA,
		window: make([]float64, n),
	}, nil
}

// NewEMA returns an exponential moving average with smoothing factor alpha.
// The first sample seeds the state.
func NewEMA(alpha float64) (*Filter, error) {
	if !(alpha > 0 && alpha <= 1) {
		return nil, fmt.Errorf("luxpwm: could not create EMA filter with alpha %v: %w", alpha, ErrInvalidAlpha)
	}

	return &Filter{
		kind:  EMA,
		alpha: alpha,
	}, nil
}

// Kind returns the filter kind.
func (f *Filter) Kind() FilterKind {
	return f.kind
}

// Process feeds a raw value and returns the smoothed value.
func (f *Filter) Process(v float64) float64 {
	switch f.kind {
	case SMA:
		return f.sma(v)
	case EMA:
		return f.ema(v)
	case SavitzkyGolay:
		return f.savgol(v)
	}
	panic(fmt.Sprintf("luxpwm: unknown filter kind %v", f.kind))
}

// Reset drops every sample seen so far. Savitzky-Golay coefficients are kept.
func (f *Filter) Reset() {
	for i := range f.window {
		f.window[i] = 0
	}
	f.pos = 0
	f.count = 0
	f.sum = 0
	f.initialized = false
	f.state = 0
}

func (f *Filter) sma(v float64) float64 {
	n := len(f.window)
	if f.count < n {
		f.window[f.pos] = v
		f.sum += v
		f.pos = (f.pos + 1) % n
		f.count++
		return f.sum / float64(f.count)
	}

	f.sum -= f.window[f.pos]
	f.window[f.pos] = v
	f.sum += v
	f.pos = (f.pos + 1) % n

	return f.sum / float64(n)
}

func (f *Filter) ema(v float64) float64 {
	if !f.initialized {
		f.state = v
		f.initialized = true
		return f.state
	}
	f.state = f.alpha*v + (1-f.alpha)*f.state

	return f.state
}

func (f *Filter) savgol(v float64) float64 {
	n := len(f.window)
	f.window[f.pos] = v
	f.pos = (f.pos + 1) % n
	if f.count < n {
		f.count++
	}

	if f.count < n {
		return floats.Sum(f.window[:f.count]) / float64(f.count)
	}

	// coeffs[0] pairs with the oldest sample, which sits at pos.
	k := copy(f.ordered, f.window[f.pos:])
	copy(f.ordered[k:], f.window[:f.pos])

	return floats.Dot(f.coeffs, f.ordered)
}
