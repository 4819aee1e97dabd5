package observability

import (
	"strconv"
	"time"

	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "blockflow"

// Metrics holds the collectors registered by NewMetrics.
type Metrics struct {
	blocks   *prometheus.CounterVec
	saves    *prometheus.CounterVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		blocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "block_events_total",
				Help:      "Blocks added to or removed from a canvas",
			},
			[]string{"event", "type"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "save_attempts_total",
				Help:      "Save attempts by outcome and failure category",
			},
			[]string{"outcome", "category"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	for _, c := range []prometheus.Collector{m.blocks, m.saves, m.requests, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that feed the block and save counters.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnBlockAdded: func(e *domain.NodeEvent) {
			m.blocks.WithLabelValues(string(e.Type), string(e.NodeType)).Inc()
		},
		OnBlockRemoved: func(e *domain.NodeEvent) {
			m.blocks.WithLabelValues(string(e.Type), string(e.NodeType)).Inc()
		},
		OnSave: func(e *domain.SaveEvent) {
			m.saves.WithLabelValues(string(e.Type), e.Category).Inc()
		},
	}
}

// ObserveRequest records one HTTP request. route is the router pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
