package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cgxeiji/luxpwm"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
)

const (
	pwmFreq = 5 * physic.KiloHertz
	adcMax  = 4095 // 12-bit ADC
)

type luxReader interface {
	Lux() (float64, error)
}

type pwmOut interface {
	PWM(duty gpio.Duty, f physic.Frequency) error
}

// switches reads the pulled-up front panel switches. The output is on when
// the enable pin is high, and the loop runs in Auto mode when the mode pin is
// pulled low.
type switches struct {
	enable gpio.PinIn
	mode   gpio.PinIn
}

func (s switches) read() (bool, luxpwm.Mode) {
	enabled := s.enable.Read() == gpio.High
	if s.mode.Read() == gpio.Low {
		return enabled, luxpwm.Auto
	}
	return enabled, luxpwm.Manual
}

// readLux averages every sensor.
func readLux(sensors []luxReader) (float64, error) {
	values := make([]float64, len(sensors))
	for i, s := range sensors {
		v, err := s.Lux()
		if err != nil {
			return 0, fmt.Errorf("could not read sensor %d: %w", i+1, err)
		}
		values[i] = v
	}
	return luxpwm.MeanLux(values...), nil
}

// potentiometer reads the manual input. With a path it reads a raw ADC count
// from a sysfs file (e.g. an IIO in_voltageN_raw attribute), otherwise it
// returns a fixed duty.
type potentiometer struct {
	path  string
	fixed float64
}

func (p potentiometer) read(dutyMax int) (float64, error) {
	if p.path == "" {
		return p.fixed, nil
	}

	b, err := os.ReadFile(p.path)
	if err != nil {
		return 0, fmt.Errorf("could not read potentiometer: %w", err)
	}
	raw, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("could not parse potentiometer value: %w", err)
	}

	return float64(luxpwm.ScaleADC(raw, adcMax, dutyMax)), nil
}

// toPWM scales a duty in [0, dutyMax] to the periph duty range.
func toPWM(duty, dutyMax int) gpio.Duty {
	return gpio.Duty(int64(duty) * int64(gpio.DutyMax) / int64(dutyMax))
}
