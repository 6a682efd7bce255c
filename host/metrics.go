package host

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the loop's Prometheus collectors.
type Metrics struct {
	Frames       prometheus.Counter
	Commands     *prometheus.CounterVec
	TickDuration prometheus.Histogram
	Sessions     prometheus.Gauge
}

// NewMetrics creates the loop collectors under namespace and registers them
// on reg. A nil reg leaves them unregistered.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Total number of frames stepped by the host loop",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of commands executed",
		}, []string{"command", "result"}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent stepping one frame",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05},
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Number of live sessions",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Frames, m.Commands, m.TickDuration, m.Sessions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeFrame(d time.Duration, sessions int) {
	m.Frames.Inc()
	m.TickDuration.Observe(d.Seconds())
	m.Sessions.Set(float64(sessions))
}

func (m *Metrics) observeCommand(name string, ok bool) {
	result := "handled"
	if !ok {
		result = "rejected"
	}
	m.Commands.WithLabelValues(name, result).Inc()
}
