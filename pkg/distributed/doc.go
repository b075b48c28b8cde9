// Package distributed coordinates a fleet of schedulers through Redis so
// that each named job runs on exactly one instance per activation.
//
// Cooperative schedulers are per-process: when the same service runs on
// many hosts, every instance pumps the same timers and every instance would
// run the same nightly jobs. The FleetGuard turns that into a leader
// election per job: before running, each instance races for a short-lived
// Redis lease on the job name, and only the winner executes.
//
// # Quick Start
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//
//	cfg := distributed.DefaultConfig()
//	cfg.Redis = rdb
//	guard, err := distributed.NewFleetGuard(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Every instance plans the same job; one instance runs each night.
//	_ = planner.Schedule(nil, "nightly-report", "0 3 * * *",
//		guard.Wrap("nightly-report", generateReport))
//
// # Lease Semantics
//
// Acquire issues SET NX PX with the instance identity as the value, so a
// lease is a single Redis key that expires on its own. Release and Refresh
// run compare-and-mutate Lua scripts: they touch the key only while it
// still carries this instance's identity. A crashed holder therefore blocks
// the job for at most LeaseTTL, after which the next activation elects a
// new holder.
//
// The wrapped callback releases the lease as soon as the job returns. Jobs
// that may outlive LeaseTTL should call Refresh from within, or raise the
// TTL.
//
// # Failure Policy
//
// Redis errors are treated as lost elections: the wrapped callback skips
// the run and logs instead of letting every instance fire at once. Counters
// for acquisitions, contentions, and errors are exported when a metrics
// registry is configured.
package distributed
