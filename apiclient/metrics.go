package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the request collectors. A nil *metrics records nothing.
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "web_analyzer",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of API requests by outcome.",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "web_analyzer",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Duration of API requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"method", "path"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "web_analyzer",
				Subsystem: "client",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight API requests.",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, m.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) start() func(method, path string, status int) {
	if m == nil {
		return func(string, string, int) {}
	}
	m.inFlight.Inc()
	begin := time.Now()
	return func(method, path string, status int) {
		m.inFlight.Dec()
		label := "network_error"
		if status > 0 {
			label = strconv.Itoa(status)
		}
		m.requests.WithLabelValues(method, path, label).Inc()
		m.duration.WithLabelValues(method, path).Observe(time.Since(begin).Seconds())
	}
}
