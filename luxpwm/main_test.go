package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cgxeiji/luxpwm"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpiotest"
	"periph.io/x/periph/conn/physic"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeSensor struct {
	lux float64
	err error
}

func (s fakeSensor) Lux() (float64, error) {
	return s.lux, s.err
}

type fakePWM struct {
	duties []gpio.Duty
	err    error
}

func (p *fakePWM) PWM(duty gpio.Duty, f physic.Frequency) error {
	if p.err != nil {
		return p.err
	}
	p.duties = append(p.duties, duty)
	return nil
}

func (p *fakePWM) last() gpio.Duty {
	return p.duties[len(p.duties)-1]
}

func newSwitches(enabled, auto bool) switches {
	en, mode := gpio.Low, gpio.High
	if enabled {
		en = gpio.High
	}
	if auto {
		mode = gpio.Low
	}
	return switches{
		enable: &gpiotest.Pin{N: "EN", L: en},
		mode:   &gpiotest.Pin{N: "MODE", L: mode},
	}
}

func newLoop(t *testing.T, sw switches, sensors ...luxReader) (*loop, *fakePWM, *test.Hook) {
	t.Helper()
	ctrl, err := luxpwm.New()
	if err != nil {
		t.Fatal(err)
	}
	logger, hook := test.NewNullLogger()
	out := &fakePWM{}

	return &loop{
		ctrl:    ctrl,
		sensors: sensors,
		sw:      sw,
		pot:     potentiometer{fixed: 256},
		out:     out,
		log:     log.NewEntry(logger),
	}, out, hook
}

func TestSwitches(t *testing.T) {
	tests := []struct {
		enabled, auto bool
		wantMode      luxpwm.Mode
	}{
		{enabled: true, auto: true, wantMode: luxpwm.Auto},
		{enabled: false, auto: true, wantMode: luxpwm.Auto},
		{enabled: true, auto: false, wantMode: luxpwm.Manual},
	}
	for _, tt := range tests {
		enabled, mode := newSwitches(tt.enabled, tt.auto).read()
		if enabled != tt.enabled || mode != tt.wantMode {
			t.Errorf("read() = %v, %v, want %v, %v", enabled, mode, tt.enabled, tt.wantMode)
		}
	}
}

func TestReadLux(t *testing.T) {
	got, err := readLux([]luxReader{fakeSensor{lux: 10}, fakeSensor{lux: 20}})
	if err != nil {
		t.Fatal(err)
	}
	if got != 15 {
		t.Errorf("readLux() = %v, want 15", got)
	}

	errBus := errors.New("bus")
	if _, err := readLux([]luxReader{fakeSensor{lux: 10}, fakeSensor{err: errBus}}); !errors.Is(err, errBus) {
		t.Errorf("readLux() error = %v, want %v", err, errBus)
	}
}

func TestPotentiometer(t *testing.T) {
	if got, err := (potentiometer{fixed: 300}).read(1023); err != nil || got != 300 {
		t.Errorf("fixed read() = %v, %v, want 300", got, err)
	}

	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	if err := os.WriteFile(path, []byte("2048\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := potentiometer{path: path}.read(1023)
	if err != nil {
		t.Fatal(err)
	}
	if got != 511 {
		t.Errorf("read() = %v, want 511", got)
	}

	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (potentiometer{path: path}).read(1023); err == nil {
		t.Error("read() parsed a non numeric value")
	}
}

func TestToPWM(t *testing.T) {
	if got := toPWM(1023, 1023); got != gpio.DutyMax {
		t.Errorf("toPWM(max) = %v, want %v", got, gpio.DutyMax)
	}
	if got := toPWM(0, 1023); got != 0 {
		t.Errorf("toPWM(0) = %v, want 0", got)
	}
}

func TestLoopTick(t *testing.T) {
	t.Run("auto", func(t *testing.T) {
		l, out, _ := newLoop(t, newSwitches(true, true), fakeSensor{lux: 600}, fakeSensor{lux: 600})
		if err := l.tick(time.Now()); err != nil {
			t.Fatal(err)
		}
		if got, want := out.last(), toPWM(614, 1023); got != want {
			t.Errorf("duty = %v, want %v", got, want)
		}
	})

	t.Run("manual", func(t *testing.T) {
		l, out, _ := newLoop(t, newSwitches(true, false))
		if err := l.tick(time.Now()); err != nil {
			t.Fatal(err)
		}
		if got, want := out.last(), toPWM(256, 1023); got != want {
			t.Errorf("duty = %v, want %v", got, want)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		l, out, _ := newLoop(t, newSwitches(false, true), fakeSensor{lux: 900})
		if err := l.tick(time.Now()); err != nil {
			t.Fatal(err)
		}
		if got := out.last(); got != 0 {
			t.Errorf("duty = %v, want 0", got)
		}
	})

	t.Run("sensor failure skips tick", func(t *testing.T) {
		l, out, hook := newLoop(t, newSwitches(true, true), fakeSensor{err: errors.New("nack")})
		if err := l.tick(time.Now()); err != nil {
			t.Fatal(err)
		}
		if len(out.duties) != 0 {
			t.Errorf("PWM called %d times, want 0", len(out.duties))
		}
		if e := hook.LastEntry(); e == nil || e.Level != log.WarnLevel {
			t.Errorf("last entry = %v, want a warning", e)
		}
	})

	t.Run("pwm failure", func(t *testing.T) {
		l, out, _ := newLoop(t, newSwitches(true, true), fakeSensor{lux: 1})
		out.err = errors.New("pwm")
		if err := l.tick(time.Now()); !errors.Is(err, out.err) {
			t.Errorf("tick() error = %v, want %v", err, out.err)
		}
	})
}

func TestLoopStatus(t *testing.T) {
	l, _, hook := newLoop(t, newSwitches(true, true), fakeSensor{lux: 600})
	now := time.Now()

	for i := 0; i < 3; i++ {
		if err := l.tick(now.Add(time.Duration(i) * 100 * time.Millisecond)); err != nil {
			t.Fatal(err)
		}
	}

	if n := len(hook.AllEntries()); n != 1 {
		t.Fatalf("got %d status entries within one status interval, want 1", n)
	}
	if got, want := hook.LastEntry().Message, "LED:ON  AUTO | Lux: 600.0"; got != want {
		t.Errorf("status = %q, want %q", got, want)
	}
}

func TestLoopRunStops(t *testing.T) {
	l, _, _ := newLoop(t, newSwitches(true, true), fakeSensor{lux: 600})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.run(ctx, time.Millisecond); !errors.Is(err, context.Canceled) {
		t.Errorf("run() error = %v, want %v", err, context.Canceled)
	}
}

func TestServeClosesSensorsWhenPinsFail(t *testing.T) {
	ctrl, err := luxpwm.New()
	if err != nil {
		t.Fatal(err)
	}

	closed := 0
	sensorsFn := func() ([]luxReader, func(), error) {
		return []luxReader{fakeSensor{lux: 1}}, func() { closed++ }, nil
	}
	errPins := errors.New("unknown pin")
	pinsFn := func() (switches, pwmOut, error) {
		return switches{}, nil, errPins
	}

	err = serve(context.Background(), ctrl, sensorsFn, pinsFn, potentiometer{}, time.Millisecond)
	if !errors.Is(err, errPins) {
		t.Errorf("serve() error = %v, want %v", err, errPins)
	}
	if closed != 1 {
		t.Errorf("sensors closed %d times, want 1", closed)
	}
}

func TestServeTurnsOutputOffOnCancel(t *testing.T) {
	ctrl, err := luxpwm.New()
	if err != nil {
		t.Fatal(err)
	}

	closed := 0
	sensorsFn := func() ([]luxReader, func(), error) {
		return []luxReader{fakeSensor{lux: 600}}, func() { closed++ }, nil
	}
	out := &fakePWM{}
	pinsFn := func() (switches, pwmOut, error) {
		return newSwitches(true, true), out, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := serve(ctx, ctrl, sensorsFn, pinsFn, potentiometer{}, time.Hour); err != nil {
		t.Fatalf("serve() error = %v, want nil on cancel", err)
	}
	if closed != 1 {
		t.Errorf("sensors closed %d times, want 1", closed)
	}
	if len(out.duties) == 0 || out.last() != 0 {
		t.Errorf("duties = %v, want the output turned off last", out.duties)
	}
}
