// Package metrics provides Prometheus instrumentation for gotick components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for gotick components.
type Registry struct {
	// Scheduler Metrics
	ItemsScheduled *prometheus.CounterVec
	ItemsExecuted  *prometheus.CounterVec
	ItemsCancelled *prometheus.CounterVec
	ItemsSkipped   *prometheus.CounterVec
	ItemsReaped    *prometheus.CounterVec
	RetryAttempts  *prometheus.CounterVec
	RetryExhausted *prometheus.CounterVec
	Compactions    *prometheus.CounterVec
	PoolReused     *prometheus.CounterVec
	PoolDropped    *prometheus.CounterVec
	ClockRollovers *prometheus.CounterVec
	TickDuration   *prometheus.HistogramVec
	PendingItems   *prometheus.GaugeVec

	// Fleet Guard Metrics
	GuardAcquired  *prometheus.CounterVec
	GuardContended *prometheus.CounterVec
	GuardErrors    *prometheus.CounterVec
}

// DefaultRegistry is the default metrics registry used by gotick components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		// Scheduler Metrics
		ItemsScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "sched",
				Name:      "items_scheduled_total",
				Help:      "Total number of items scheduled",
			},
			[]string{"scheduler_name", "kind"},
		),

		ItemsExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "sched",
				Name:      "items_executed_total",
				Help:      "Total number of item callbacks executed",
			},
			[]string{"scheduler_name", "kind"},
		),

		ItemsCancelled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "sched",
				Name:      "items_cancelled_total",
				Help:      "Total number of items logically deleted by cancellation",
			},
			[]string{"scheduler_name", "kind"},
		),

		ItemsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "sched",
				Name:      "items_skipped_total",
				Help:      "Total number of due items skipped because the owner reported permanent failure",
			},
			[]string{"scheduler_name"},
		),

		ItemsReaped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "sched",
				Name:      "items_reaped_total",
				Help:      "Total number of logically deleted items reclaimed",
			},
			[]string{"scheduler_name"},
		),

		RetryAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "sched",
				Name:      "retry_attempts_total",
				Help:      "Total number of retry attempts executed",
			},
			[]string{"scheduler_name"},
		),

		RetryExhausted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "sched",
				Name:      "retry_exhausted_total",
				Help:      "Total number of retry chains that ran out of attempts",
			},
			[]string{"scheduler_name"},
		),

		Compactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "sched",
				Name:      "compactions_total",
				Help:      "Total number of full heap compactions",
			},
			[]string{"scheduler_name"},
		),

		PoolReused: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "sched",
				Name:      "pool_reused_total",
				Help:      "Total number of items served from the freelist",
			},
			[]string{"scheduler_name"},
		),

		PoolDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "sched",
				Name:      "pool_dropped_total",
				Help:      "Total number of recycled items dropped because the freelist was full",
			},
			[]string{"scheduler_name"},
		),

		ClockRollovers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "clock",
				Name:      "rollovers_total",
				Help:      "Total number of 32-bit counter rollovers observed between pump passes",
			},
			[]string{"scheduler_name"},
		),

		TickDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gotick",
				Subsystem: "sched",
				Name:      "tick_duration_seconds",
				Help:      "Time spent inside a single pump pass",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"scheduler_name"},
		),

		PendingItems: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "gotick",
				Subsystem: "sched",
				Name:      "pending_items",
				Help:      "Number of live items across heap, staging, and defer queue",
			},
			[]string{"scheduler_name"},
		),

		// Fleet Guard Metrics
		GuardAcquired: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "distributed",
				Name:      "guard_acquired_total",
				Help:      "Total number of successful job guard acquisitions",
			},
			[]string{"job"},
		),

		GuardContended: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "distributed",
				Name:      "guard_contended_total",
				Help:      "Total number of guard attempts lost to another instance",
			},
			[]string{"job"},
		),

		GuardErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gotick",
				Subsystem: "distributed",
				Name:      "guard_errors_total",
				Help:      "Total number of Redis errors during guard operations",
			},
			[]string{"job"},
		),
	}
}
