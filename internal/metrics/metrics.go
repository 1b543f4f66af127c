// Package metrics holds the Prometheus collectors the service layer
// updates as it drives the multiset core. The core package itself
// (internal/csl) stays free of metrics dependencies; everything here
// is wired from the outside by service.MultisetService.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// AdmissionFailures counts TryPop/CompareTryPop calls that found
	// the list empty at the admission-ticket stage.
	AdmissionFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "csl",
		Name:      "admission_failures_total",
		Help:      "Pop attempts that found the multiset empty at admission.",
	})

	// InsertRetries counts CAS losses during Insert's linking attempt.
	InsertRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "csl",
		Name:      "insert_retries_total",
		Help:      "Insert attempts that lost a CAS race and restarted from the sentinel.",
	})

	// PopMisses counts loadAndTag races where another goroutine tagged
	// the head first.
	PopMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "csl",
		Name:      "pop_misses_total",
		Help:      "Pop attempts that lost the race to tag the current head.",
	})

	// PoolBlockAllocations counts node-pool blocks allocated, including
	// the initial block the pool is created with.
	PoolBlockAllocations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "csl",
		Name:      "pool_block_allocations_total",
		Help:      "Node pool blocks allocated, including the initial block.",
	})

	// RetireBacklog reports the current count of nodes retired but not
	// yet safe to return to the pool.
	RetireBacklog = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "csl",
		Name:      "retire_backlog",
		Help:      "Nodes retired but not yet returned to the pool.",
	})

	// ExitWALPending reports outbox records awaiting broadcast.
	ExitWALPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "csl",
		Name:      "exit_wal_pending",
		Help:      "Exit WAL records in state NEW or SENT, awaiting acknowledgement.",
	})
)

// Register adds every collector in this package to reg. Composition
// roots call this once against prometheus.NewRegistry() (or
// prometheus.DefaultRegisterer) during startup.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		AdmissionFailures,
		InsertRetries,
		PopMisses,
		PoolBlockAllocations,
		RetireBacklog,
		ExitWALPending,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
