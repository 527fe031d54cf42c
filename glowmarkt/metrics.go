package glowmarkt

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors instrumenting API requests.
// The client records into them but never registers them; embedding
// applications register with whatever registry they expose.
type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

// NewMetrics creates unregistered collectors for API request counts and
// latency, labelled by request path and HTTP status.
func NewMetrics() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glowmarkt_api_requests_total",
				Help: "Number of Glowmarkt API requests by path and status code.",
			},
			[]string{"path", "status"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glowmarkt_api_request_duration_seconds",
				Help:    "Glowmarkt API request latency by path.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		),
	}
}

// Register registers all collectors with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if err := reg.Register(m.Requests); err != nil {
		return err
	}
	return reg.Register(m.Latency)
}

func (m *Metrics) observe(path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	m.Latency.WithLabelValues(path).Observe(elapsed.Seconds())
}
