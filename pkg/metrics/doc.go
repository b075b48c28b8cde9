// Package metrics provides Prometheus instrumentation for gotick components.
//
// All instruments live on a Registry. Components accept an optional
// *Registry in their configuration and record into it on every pump pass;
// a nil Registry disables instrumentation with no overhead beyond a nil
// check.
//
// # Quick Start
//
// Pass the default registry when building a scheduler and expose the
// standard handler:
//
//	s, err := sched.NewWithConfig(sched.Config{
//		Metrics: metrics.DefaultRegistry,
//		Name:    "main",
//	})
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation, for example in tests:
//
//	reg := prometheus.NewRegistry()
//	registry := metrics.NewRegistry(reg)
//
// # Available Metrics
//
// ## Scheduler Metrics
//
//   - gotick_sched_items_scheduled_total: Items accepted for execution
//   - gotick_sched_items_executed_total: Item callbacks executed
//   - gotick_sched_items_cancelled_total: Items logically deleted by cancellation
//   - gotick_sched_items_skipped_total: Due items dropped because their owner failed
//   - gotick_sched_items_reaped_total: Deleted items reclaimed
//   - gotick_sched_retry_attempts_total: Retry attempts executed
//   - gotick_sched_retry_exhausted_total: Retry chains that ran out of attempts
//   - gotick_sched_compactions_total: Full heap compactions
//   - gotick_sched_pool_reused_total: Items served from the freelist
//   - gotick_sched_pool_dropped_total: Recycled items dropped by a full freelist
//   - gotick_sched_tick_duration_seconds: Time spent in a single pump pass
//   - gotick_sched_pending_items: Live items awaiting execution
//
// ## Clock Metrics
//
//   - gotick_clock_rollovers_total: 32-bit counter rollovers observed
//
// ## Fleet Guard Metrics
//
//   - gotick_distributed_guard_acquired_total: Successful lease acquisitions
//   - gotick_distributed_guard_contended_total: Attempts lost to another instance
//   - gotick_distributed_guard_errors_total: Redis errors during guard operations
//
// # Labels
//
//   - scheduler_name: User-provided name for the scheduler instance
//   - kind: "timeout" or "interval"
//   - job: Guarded job name
package metrics
