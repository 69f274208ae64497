package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus instruments the simulator updates, the
// headline fleet counters a dashboard would scrape.
type Metrics struct {
	DriversUsed      prometheus.Gauge
	OrdersDelivered  prometheus.Counter
	DispatchDuration prometheus.Histogram
}

// NewMetrics registers and returns a Metrics set on reg. Pass
// prometheus.NewRegistry() for an isolated registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DriversUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dispatchsim",
			Name:      "drivers_used",
			Help:      "Number of couriers that have handled at least one order so far.",
		}),
		OrdersDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dispatchsim",
			Name:      "orders_delivered_total",
			Help:      "Total orders delivered.",
		}),
		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dispatchsim",
			Name:      "dispatch_duration_seconds",
			Help:      "Wall-clock time spent running one full simulation.",
		}),
	}

	reg.MustRegister(m.DriversUsed, m.OrdersDelivered, m.DispatchDuration)

	return m
}
