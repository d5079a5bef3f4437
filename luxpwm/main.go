package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cgxeiji/luxpwm"
	"github.com/cgxeiji/luxpwm/veml7700"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"

	log "github.com/sirupsen/logrus"
)

var (
	filterName = flag.String("filter", "ema", "smoothing filter: sma, ema or sg")
	window     = flag.Int("window", luxpwm.DefaultSMAWindow, "SMA / Savitzky-Golay window")
	order      = flag.Int("order", luxpwm.DefaultSGOrder, "Savitzky-Golay polynomial order")
	alpha      = flag.Float64("alpha", luxpwm.DefaultEMAAlpha, "EMA smoothing factor")
	capacity   = flag.Int("capacity", luxpwm.DefaultCapacity, "samples kept for bounds estimation")
	blend      = flag.Float64("blend", luxpwm.DefaultBlend, "live range blend factor")
	interval   = flag.Duration("interval", luxpwm.SampleInterval, "sample interval")

	bus1 = flag.String("bus1", "1", "I2C bus of the first sensor")
	bus2 = flag.String("bus2", "", "I2C bus of the second sensor (optional)")

	enablePin = flag.String("enable-pin", "GPIO14", "output on/off switch")
	modePin   = flag.String("mode-pin", "GPIO27", "auto/manual switch")
	pwmPin    = flag.String("pwm-pin", "GPIO18", "PWM output")

	potFile = flag.String("pot-file", "", "sysfs file holding the raw 12-bit potentiometer reading")
	manual  = flag.Float64("manual", luxpwm.DefaultDutyMax/2, "manual duty when no potentiometer file is set")

	metricsAddr = flag.String("metrics", "", "listen address for /metrics (disabled when empty)")
	level       = flag.String("v", "info", "log level")
)

func setup() {
	flag.Parse()

	lvl, err := log.ParseLevel(*level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
}

func newFilter() (*luxpwm.Filter, error) {
	kind, err := luxpwm.ParseFilterKind(*filterName)
	if err != nil {
		return nil, err
	}

	switch kind {
	case luxpwm.SMA:
		return luxpwm.NewSMA(*window)
	case luxpwm.SavitzkyGolay:
		return luxpwm.NewSavitzkyGolay(*window, *order)
	}
	return luxpwm.NewEMA(*alpha)
}

func openSensors() ([]luxReader, func(), error) {
	var sensors []luxReader
	var devices []*veml7700.Device
	closeAll := func() {
		for _, d := range devices {
			if err := d.Close(); err != nil {
				log.Warn(err)
			}
		}
	}

	for _, bus := range []string{*bus1, *bus2} {
		if bus == "" {
			continue
		}
		d, err := veml7700.New(bus, veml7700.Addr)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("could not open sensor on bus %q: %w", bus, err)
		}
		log.WithField("bus", bus).Info("VEML7700 detected")
		devices = append(devices, d)
		sensors = append(sensors, d)
	}
	if len(sensors) == 0 {
		return nil, nil, errors.New("no sensor bus configured")
	}

	return sensors, closeAll, nil
}

func openPins() (switches, pwmOut, error) {
	var sw switches
	for _, p := range []struct {
		name string
		pin  *gpio.PinIn
	}{
		{*enablePin, &sw.enable},
		{*modePin, &sw.mode},
	} {
		pin := gpioreg.ByName(p.name)
		if pin == nil {
			return sw, nil, fmt.Errorf("unknown pin %q", p.name)
		}
		if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return sw, nil, fmt.Errorf("could not configure pin %q: %w", p.name, err)
		}
		*p.pin = pin
	}

	out := gpioreg.ByName(*pwmPin)
	if out == nil {
		return sw, nil, fmt.Errorf("unknown pin %q", *pwmPin)
	}

	return sw, out, nil
}

func serveMetrics(ctx context.Context, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: *metricsAddr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()
}

func main() {
	setup()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	filter, err := newFilter()
	if err != nil {
		log.Fatal(err)
	}

	opts := []luxpwm.Option{
		luxpwm.WithFilter(filter),
		luxpwm.WithCapacity(*capacity),
		luxpwm.WithBlend(*blend),
	}
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, luxpwm.WithMetrics(luxpwm.NewMetrics(reg)))
		serveMetrics(ctx, reg)
	}

	ctrl, err := luxpwm.New(opts...)
	if err != nil {
		log.Fatal(err)
	}
	log.WithField("filter", filter.Kind()).Info("controller ready")

	pot := potentiometer{path: *potFile, fixed: *manual}
	if err := serve(ctx, ctrl, openSensors, openPins, pot, *interval); err != nil {
		log.Fatal(err)
	}
}

// serve opens the hardware, runs the control loop until ctx is done and
// turns the output off. Opened sensors are closed on every return path.
func serve(
	ctx context.Context,
	ctrl *luxpwm.Controller,
	sensorsFn func() ([]luxReader, func(), error),
	pinsFn func() (switches, pwmOut, error),
	pot potentiometer,
	every time.Duration,
) error {
	sensors, closeSensors, err := sensorsFn()
	if err != nil {
		return err
	}
	defer closeSensors()

	sw, out, err := pinsFn()
	if err != nil {
		return err
	}

	l := &loop{
		ctrl:    ctrl,
		sensors: sensors,
		sw:      sw,
		pot:     pot,
		out:     out,
		log:     log.NewEntry(log.StandardLogger()),
	}

	log.WithField("interval", every).Info("control loop started")

	err = l.run(ctx, every)
	if perr := out.PWM(0, pwmFreq); perr != nil {
		log.Warnf("could not turn output off: %v", perr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type loop struct {
	ctrl    *luxpwm.Controller
	sensors []luxReader
	sw      switches
	pot     potentiometer
	out     pwmOut
	log     *log.Entry

	lastStatus time.Time
}

func (l *loop) run(ctx context.Context, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			if err := l.tick(now); err != nil {
				return err
			}
		}
	}
}

// tick reads the inputs, runs the controller and applies its duty. Sensor
// and potentiometer failures skip the tick; PWM failures are fatal.
func (l *loop) tick(now time.Time) error {
	enabled, mode := l.sw.read()
	in := luxpwm.Input{
		Enabled: enabled,
		Mode:    mode,
	}

	var err error
	switch mode {
	case luxpwm.Auto:
		in.Raw, err = readLux(l.sensors)
	case luxpwm.Manual:
		in.Manual, err = l.pot.read(l.ctrl.DutyMax())
	}
	if err != nil {
		l.log.Warn(err)
		return nil
	}

	o := l.ctrl.Tick(in)
	if err := l.out.PWM(toPWM(o.Duty, l.ctrl.DutyMax()), pwmFreq); err != nil {
		return fmt.Errorf("could not set duty %d: %w", o.Duty, err)
	}

	if now.Sub(l.lastStatus) >= luxpwm.StatusInterval {
		lines := o.Lines()
		l.log.WithField("duty", o.Duty).Infof("%s | %s", lines[0], lines[1])
		l.lastStatus = now
	}

	return nil
}
