package veml7700

import "fmt"

// Option defines a functional option for the device.
type Option func(d *Device) (Option, error)

// Options set different configuration options and returns the previous value
// of the last option passed.
func (d *Device) Options(options ...Option) (Option, error) {
	var old Option
	var err error
	for _, opt := range options {
		old, err = opt(d)
		if err != nil {
			return nil, err
		}
	}

	return old, nil
}

// config replaces the bits of reg selected by mask with flag and returns the
// previous value of those bits.
func (d *Device) config(reg byte, mask, flag uint16) (uint16, error) {
	cfg, err := d.Read(reg)
	if err != nil {
		return 0, fmt.Errorf("could not get %#x from %#x: %w", mask, reg, err)
	}
	old := cfg & mask
	cfg &^= mask
	cfg |= flag & mask
	if err := d.Write(reg, cfg); err != nil {
		return 0, fmt.Errorf("could not set %#x in %#x: %w", flag, reg, err)
	}

	return old, nil
}

// Gain sets the ALS gain (Gain1, Gain2, Gain1_8 or Gain1_4).
func Gain(g uint16) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(ALSConf, gainMask, g)
		if err != nil {
			return nil, fmt.Errorf("veml7700: could not configure gain: %w", err)
		}
		d.gain = g & gainMask

		return Gain(old), nil
	}
}

// IntegrationTime sets the ALS integration time (IT25 to IT800).
func IntegrationTime(it uint16) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(ALSConf, itMask, it)
		if err != nil {
			return nil, fmt.Errorf("veml7700: could not configure integration time: %w", err)
		}
		d.it = it & itMask

		return IntegrationTime(old), nil
	}
}
