package luxpwm

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Lines renders the output as two 16 column display lines:
//
//	LED:ON  AUTO
//	Lux: 123.4
//
// In Manual mode the second line shows the requested manual duty.
func (o Output) Lines() [2]string {
	led := "OFF"
	if o.Enabled {
		led = "ON "
	}
	mode := "AUTO"
	value := o.Filtered
	if o.Mode == Manual {
		mode = "MAN"
		value = float64(o.Requested)
	}

	return [2]string{
		fmt.Sprintf("LED:%s %s", led, mode),
		fmt.Sprintf("Lux: %.1f", value),
	}
}

func (o Output) String() string {
	l := o.Lines()
	return l[0] + " | " + l[1]
}

// MeanLux averages the readings of several sensors. It returns 0 when no
// reading is given.
func MeanLux(readings ...float64) float64 {
	if len(readings) == 0 {
		return 0
	}
	return floats.Sum(readings) / float64(len(readings))
}
