package luxpwm

import "time"

// Loop timing used by the original firmware.
const (
	SampleInterval = 500 * time.Millisecond
	StatusInterval = 500 * time.Millisecond
)

// Controller defaults.
const (
	DefaultCapacity = 600 // 5 minutes @ 500ms
	DefaultBlend    = 0.05
	DefaultDutyMax  = 1023 // 10-bit PWM

	DefaultNominalMin = 0.0
	DefaultNominalMax = 1000.0
)

// Filter defaults.
const (
	DefaultSMAWindow = 11
	DefaultEMAAlpha  = 0.1
	DefaultSGWindow  = 11
	DefaultSGOrder   = 3
)

// Numeric tolerances.
const (
	pivotTolerance = 1e-12
	sigmaTolerance = 1e-9
	spanEpsilon    = 1e-3
	minSpan        = 1.0

	// madScale makes the MAD a consistent estimator of the standard
	// deviation of normally distributed data.
	madScale        = 1.4826
	meanADScale     = 1.2533 // sqrt(pi/2)
	inlierThreshold = 3.0
)
