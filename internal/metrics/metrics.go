package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds the storefront collectors on a private prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	CartMutations     *prometheus.CounterVec
	CartRejections    *prometheus.CounterVec
	OrdersCommitted   prometheus.Counter
	CommitFailures    *prometheus.CounterVec
	StatusTransitions *prometheus.CounterVec
	StorageLatencySec prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
	}, []string{"op"})
	cartRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_rejections_total",
	}, []string{"reason"})
	committed := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_orders_committed_total"})
	commitFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_commit_failures_total",
	}, []string{"reason"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_status_transitions_total",
	}, []string{"from", "to"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_storage_apply_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(cartMutations, cartRejections, committed, commitFailures, transitions, latency)
	return &Registry{
		reg:               r,
		CartMutations:     cartMutations,
		CartRejections:    cartRejections,
		OrdersCommitted:   committed,
		CommitFailures:    commitFailures,
		StatusTransitions: transitions,
		StorageLatencySec: latency,
	}
}

// Gatherer exposes the underlying registry for dumps and tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile writes a snapshot in the text exposition format, for
// node_exporter's textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
