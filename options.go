package luxpwm

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// An Option configures a Controller and returns the option restoring the
// previous value.
type Option func(c *Controller) (Option, error)

// Options applies options in order and returns the restoring option of the
// last one. Capacity, blend and nominal range only take effect in New.
func (c *Controller) Options(options ...Option) (Option, error) {
	var old Option
	var err error
	for _, opt := range options {
		old, err = opt(c)
		if err != nil {
			return nil, err
		}
	}

	return old, nil
}

// WithFilter sets the smoothing stage. The filter is owned by the controller
// afterwards.
func WithFilter(f *Filter) Option {
	return func(c *Controller) (Option, error) {
		if f == nil {
			return nil, fmt.Errorf("luxpwm: nil filter")
		}
		old := c.filter
		c.filter = f
		return WithFilter(old), nil
	}
}

// WithCapacity sets how many filtered readings are kept for bounds
// estimation.
func WithCapacity(n int) Option {
	return func(c *Controller) (Option, error) {
		if n < 1 {
			return nil, fmt.Errorf("luxpwm: could not set capacity to %d: %w", n, ErrInvalidCapacity)
		}
		old := c.capacity
		c.capacity = n
		return WithCapacity(old), nil
	}
}

// WithBlend sets how fast the live range follows new bounds.
func WithBlend(alpha float64) Option {
	return func(c *Controller) (Option, error) {
		if !(alpha > 0 && alpha <= 1) {
			return nil, fmt.Errorf("luxpwm: could not set blend to %v: %w", alpha, ErrInvalidAlpha)
		}
		old := c.blend
		c.blend = alpha
		return WithBlend(old), nil
	}
}

// WithNominalRange sets the cold-start live range.
func WithNominalRange(min, max float64) Option {
	return func(c *Controller) (Option, error) {
		if !(max > min) {
			return nil, fmt.Errorf("luxpwm: could not set nominal range [%v, %v]: %w", min, max, ErrInvalidRange)
		}
		old := c.nominal
		c.nominal = Bounds{Min: min, Max: max}
		return WithNominalRange(old.Min, old.Max), nil
	}
}

// WithDutyMax sets the largest duty value, e.g. 1023 for a 10-bit PWM.
func WithDutyMax(n int) Option {
	return func(c *Controller) (Option, error) {
		if n < 1 {
			return nil, fmt.Errorf("luxpwm: could not set duty max to %d: %w", n, ErrInvalidRange)
		}
		old := c.dutyMax
		c.dutyMax = n
		return WithDutyMax(old), nil
	}
}

// WithLogger sets the logger used for tick traces.
func WithLogger(l *log.Entry) Option {
	return func(c *Controller) (Option, error) {
		if l == nil || l.Logger == nil {
			return nil, fmt.Errorf("luxpwm: nil logger")
		}
		old := c.log
		c.log = l
		return WithLogger(old), nil
	}
}

// WithMetrics publishes every tick to m. A nil m disables publishing.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) (Option, error) {
		old := c.metrics
		c.metrics = m
		return WithMetrics(old), nil
	}
}
