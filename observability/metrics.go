package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RouterMetrics aggregates the execution counters exported by the route
// engine wiring.
type RouterMetrics struct {
	routes   *prometheus.CounterVec
	legs     prometheus.Histogram
	fees     prometheus.Counter
	duration prometheus.Histogram
}

var (
	routerMetricsOnce sync.Once
	routerRegistry    *RouterMetrics
)

// Router returns the lazily-initialised route metrics registry.
func Router() *RouterMetrics {
	routerMetricsOnce.Do(func() {
		routerRegistry = &RouterMetrics{
			routes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "dexroute",
				Subsystem: "router",
				Name:      "routes_total",
				Help:      "Route executions segmented by outcome (ok or error kind).",
			}, []string{"outcome"}),
			legs: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "dexroute",
				Subsystem: "router",
				Name:      "route_legs",
				Help:      "Legs per executed route.",
				Buckets:   prometheus.LinearBuckets(1, 1, 10),
			}),
			fees: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "dexroute",
				Subsystem: "router",
				Name:      "fees_collected_total",
				Help:      "Total protocol fee units collected across committed routes.",
			}),
			duration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: "dexroute",
				Subsystem: "router",
				Name:      "route_duration_seconds",
				Help:      "Wall time per route call.",
				Buckets:   prometheus.DefBuckets,
			}),
		}
		prometheus.MustRegister(
			routerRegistry.routes,
			routerRegistry.legs,
			routerRegistry.fees,
			routerRegistry.duration,
		)
	})
	return routerRegistry
}

// ObserveRoute records one route call. outcome is "ok" or the error kind.
func (m *RouterMetrics) ObserveRoute(outcome string, legs int, fee uint64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.routes.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.legs.Observe(float64(legs))
		m.fees.Add(float64(fee))
	}
	m.duration.Observe(elapsed.Seconds())
}
