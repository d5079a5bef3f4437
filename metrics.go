package luxpwm

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports the state of a Controller.
type Metrics struct {
	duty     prometheus.Gauge
	filtered prometheus.Gauge
	liveMin  prometheus.Gauge
	liveMax  prometheus.Gauge
	enabled  prometheus.Gauge
	ticks    *prometheus.CounterVec
}

// NewMetrics creates the controller metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		duty: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "luxpwm",
			Name:      "duty",
			Help:      "Duty applied to the actuator",
		}),
		filtered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "luxpwm",
			Name:      "filtered_lux",
			Help:      "Last filtered light reading in lux",
		}),
		liveMin: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "luxpwm",
			Name:      "live_min_lux",
			Help:      "Lower end of the adaptive range in lux",
		}),
		liveMax: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "luxpwm",
			Name:      "live_max_lux",
			Help:      "Upper end of the adaptive range in lux",
		}),
		enabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "luxpwm",
			Name:      "enabled",
			Help:      "1 when the output switch is on",
		}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "luxpwm",
			Name:      "ticks_total",
			Help:      "Control ticks by mode",
		}, []string{"mode"}),
	}

	reg.MustRegister(m.duty, m.filtered, m.liveMin, m.liveMax, m.enabled, m.ticks)

	return m
}

func (m *Metrics) observe(out Output) {
	if m == nil {
		return
	}

	m.duty.Set(float64(out.Duty))
	m.filtered.Set(out.Filtered)
	m.liveMin.Set(out.Range.Min)
	m.liveMax.Set(out.Range.Max)
	if out.Enabled {
		m.enabled.Set(1)
	} else {
		m.enabled.Set(0)
	}
	m.ticks.WithLabelValues(out.Mode.String()).Inc()
}
