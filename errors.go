package luxpwm

import "errors"

var (
	// ErrInvalidCapacity is returned when a ring or moving average window is
	// smaller than one sample.
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	// ErrInvalidAlpha is returned when a smoothing or blend factor is outside
	// (0, 1].
	ErrInvalidAlpha = errors.New("alpha must be in (0, 1]")
	// ErrInvalidWindow is returned when a Savitzky-Golay window is smaller
	// than one sample.
	ErrInvalidWindow = errors.New("window must be at least 1")
	// ErrInvalidOrder is returned when the polynomial order of a
	// Savitzky-Golay filter is negative or not smaller than its window.
	ErrInvalidOrder = errors.New("polynomial order must be in [0, window)")
	// ErrInvalidRange is returned when a range has max <= min or the duty
	// resolution is below 1.
	ErrInvalidRange = errors.New("invalid range")
)
