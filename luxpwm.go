// Package luxpwm turns noisy ambient light readings into a stable PWM duty.
//
// Each tick a raw reading is smoothed by a Filter, stored in a SampleRing,
// and the robust bounds of the ring are blended into a slowly adapting live
// range. The filtered reading is then mapped from the live range onto
// [0, DutyMax]. In Manual mode the duty is forwarded from an external input
// instead, and a disabled output always yields 0.
package luxpwm

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Mode selects where the duty of a tick comes from.
type Mode int

// Control modes.
const (
	Auto Mode = iota
	Manual
)

func (m Mode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Manual:
		return "manual"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Input holds the external readings of a single tick.
type Input struct {
	// Raw is the ambient light reading in lux.
	Raw float64
	// Enabled is the output on/off switch.
	Enabled bool
	// Mode is the auto/manual switch.
	Mode Mode
	// Manual is the duty requested in Manual mode, already scaled to
	// [0, DutyMax].
	Manual float64
}

// Output is the result of a tick.
type Output struct {
	// Duty is the value to apply, 0 when the output is disabled.
	Duty int
	// Requested is the duty computed by the active mode before the enable
	// switch is applied.
	Requested int
	Mode      Mode
	Enabled   bool
	Filtered  float64
	Range     Bounds
}

// Controller owns the whole signal chain. It is not concurrency safe; call
// Tick from a single goroutine.
type Controller struct {
	filter    *Filter
	ring      *SampleRing
	estimator BoundsEstimator
	live      *AdaptiveRange
	snapshot  []float64

	capacity int
	blend    float64
	nominal  Bounds
	dutyMax  int

	log     *log.Entry
	metrics *Metrics

	last Output
}

// New returns a Controller. Without options it runs an EMA filter (α=0.1)
// over a 600 sample ring, blends bounds with α=0.05 starting from [0, 1000]
// and drives a 10-bit duty.
func New(opts ...Option) (*Controller, error) {
	c := &Controller{
		capacity: DefaultCapacity,
		blend:    DefaultBlend,
		nominal:  Bounds{Min: DefaultNominalMin, Max: DefaultNominalMax},
		dutyMax:  DefaultDutyMax,
		log:      log.NewEntry(log.StandardLogger()),
	}

	if _, err := c.Options(opts...); err != nil {
		return nil, err
	}

	if c.filter == nil {
		f, err := NewEMA(DefaultEMAAlpha)
		if err != nil {
			return nil, err
		}
		c.filter = f
	}

	var err error
	if c.ring, err = NewSampleRing(c.capacity); err != nil {
		return nil, err
	}
	if c.live, err = NewAdaptiveRange(c.nominal, c.blend); err != nil {
		return nil, err
	}
	c.snapshot = make([]float64, 0, c.capacity)
	c.last = Output{Range: c.nominal}

	return c, nil
}

// Tick runs one pass of the control loop and returns the duty to apply.
func (c *Controller) Tick(in Input) Output {
	out := Output{
		Mode:     in.Mode,
		Enabled:  in.Enabled,
		Filtered: c.last.Filtered,
		Range:    c.live.Bounds(),
	}

	switch in.Mode {
	case Manual:
		out.Requested = c.manualDuty(in.Manual)
	default:
		out.Mode = Auto
		out.Filtered = c.filter.Process(in.Raw)
		c.ring.Push(out.Filtered)
		c.snapshot = c.ring.Snapshot(c.snapshot)
		b := c.estimator.Estimate(c.snapshot, out.Range)
		out.Range = c.live.Update(b)
		out.Requested = MapDuty(out.Filtered, out.Range, c.dutyMax)
	}

	if in.Enabled {
		out.Duty = out.Requested
	}

	if c.log.Logger.IsLevelEnabled(log.TraceLevel) {
		c.log.WithFields(log.Fields{
			"mode":     out.Mode,
			"enabled":  out.Enabled,
			"raw":      in.Raw,
			"filtered": out.Filtered,
			"min":      out.Range.Min,
			"max":      out.Range.Max,
			"duty":     out.Duty,
		}).Trace("tick")
	}
	c.metrics.observe(out)

	c.last = out
	return out
}

func (c *Controller) manualDuty(v float64) int {
	return MapDuty(v, Bounds{Min: 0, Max: float64(c.dutyMax)}, c.dutyMax)
}

// Range returns the live range.
func (c *Controller) Range() Bounds {
	return c.live.Bounds()
}

// Last returns the output of the previous tick.
func (c *Controller) Last() Output {
	return c.last
}

// DutyMax returns the duty resolution.
func (c *Controller) DutyMax() int {
	return c.dutyMax
}

// Samples returns the number of filtered readings held for bounds estimation.
func (c *Controller) Samples() int {
	return c.ring.Len()
}
