package veml7700

import (
	"errors"
	"fmt"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

var (
	// ErrNotDevice throws an error when the device ID does not match a
	// VEML7700 signature (0x81).
	ErrNotDevice error = errors.New("veml7700: device ID does not match (0x81)")
)

// Device defines a VEML7700 ambient light sensor.
type Device struct {
	dev *i2c.Dev
	bus i2c.BusCloser

	gain uint16
	it   uint16
}

// New returns a new VEML7700 device powered on with gain 1 and 100ms
// integration time.
//
// Argument "busName" can be used to specify the exact bus to use ("/dev/i2c-2", "I2C2", "2").
// Argument "addr" can be used to specify an alternative address if the default (0x10) is not used.
// If "busName" argument is specified as an empty string "" the first available bus will be used.
func New(busName string, addr uint16) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("veml7700: could not initialize host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("veml7700: could not open I2C bus: %w", err)
	}

	d, err := Open(bus, addr)
	if err != nil {
		bus.Close()
		return nil, err
	}

	return d, nil
}

// Open returns a VEML7700 device on an already opened bus. The device owns
// the bus and closes it on Close.
func Open(bus i2c.BusCloser, addr uint16) (*Device, error) {
	if addr == 0 {
		addr = Addr
	}

	d := &Device{
		dev: &i2c.Dev{
			Addr: addr,
			Bus:  bus,
		},
		bus:  bus,
		gain: Gain1,
		it:   IT100,
	}

	id, err := d.Read(RegID)
	if err != nil {
		return nil, fmt.Errorf("veml7700: could not get device ID: %w", err)
	}
	if byte(id) != DeviceID {
		return nil, ErrNotDevice
	}

	if err := d.Write(ALSConf, d.gain|d.it|powerOn); err != nil {
		return nil, fmt.Errorf("veml7700: could not initialize device: %w", err)
	}

	return d, nil
}

// Close shuts the device down and closes the bus.
func (d *Device) Close() error {
	serr := d.Shutdown()
	if err := d.bus.Close(); err != nil {
		return fmt.Errorf("veml7700: could not close bus: %w", err)
	}
	return serr
}

// Read reads a 16 bit little endian register.
func (d *Device) Read(reg byte) (uint16, error) {
	b := make([]byte, 2)
	if err := d.dev.Tx([]byte{reg}, b); err != nil {
		return 0, fmt.Errorf("veml7700: could not read register %#x: %w", reg, err)
	}

	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// Write writes a 16 bit little endian register.
func (d *Device) Write(reg byte, data uint16) error {
	n, err := d.dev.Write([]byte{reg, byte(data), byte(data >> 8)})
	if err != nil {
		return fmt.Errorf("veml7700: could not write register %#x: %w", reg, err)
	}
	n-- // remove register write
	if n != 2 {
		return fmt.Errorf("veml7700: wrong number of bytes written: want %d, got %d", 2, n)
	}

	return nil
}

// ALS returns the raw ambient light count.
func (d *Device) ALS() (uint16, error) {
	return d.Read(ALS)
}

// Lux returns the ambient light in lux using the current gain and
// integration time.
func (d *Device) Lux() (float64, error) {
	raw, err := d.ALS()
	if err != nil {
		return 0, err
	}

	return float64(raw) * d.Resolution(), nil
}

// Resolution returns the lux per count for the current settings.
func (d *Device) Resolution() float64 {
	return maxResolution * (800 / itMillis(d.it)) * (2 / gainFactor(d.gain))
}

// Shutdown sets the device into power-save mode.
func (d *Device) Shutdown() error {
	_, err := d.config(ALSConf, shutdownMask, powerOff)
	if err != nil {
		return fmt.Errorf("veml7700: could not shut down: %w", err)
	}
	return nil
}

// Startup wakes the device from power-save mode.
func (d *Device) Startup() error {
	_, err := d.config(ALSConf, shutdownMask, powerOn)
	if err != nil {
		return fmt.Errorf("veml7700: could not start up: %w", err)
	}
	return nil
}

func gainFactor(g uint16) float64 {
	switch g {
	case Gain2:
		return 2
	case Gain1_8:
		return 0.125
	case Gain1_4:
		return 0.25
	}
	return 1
}

func itMillis(it uint16) float64 {
	switch it {
	case IT25:
		return 25
	case IT50:
		return 50
	case IT200:
		return 200
	case IT400:
		return 400
	case IT800:
		return 800
	}
	return 100
}
