/*
Package gotick provides a cooperative task scheduler for hosts that drive
their own main loop: embedded firmware ports, simulators, single-threaded
runtimes, and services that want scheduling without background goroutines.

Core Scheduling (pkg/sched):
  - Scheduler: timeouts, intervals, deferred work, and retry chains,
    all executed from a host-pumped Tick
  - Identity-based replacement: scheduling under the same owner and name
    replaces the previous instance
  - Bounded allocation via an internal freelist pool

Logical Clock (pkg/clock):
  - 48-bit logical time built from a 32-bit millisecond counter
  - Epoch tracking keeps deadlines ordered across counter rollover
  - Serial, mutex, and atomic read strategies for different host models

Calendar Planning (pkg/cronplan):
  - Cron expressions (robfig/cron v3 syntax) planned as one-shot
    timeouts on the core scheduler

Fleet Coordination (pkg/distributed):
  - Redis lease guard so a job planned on every fleet member runs on
    exactly one per activation

Example usage:

	import "github.com/vnykmshr/gotick/pkg/sched"

	s := sched.New()
	s.SetTimeout(nil, sched.StaticName("flush"), 100*time.Millisecond, flush)

	for {
		s.Tick()
		if wait, ok := s.NextScheduleIn(); ok {
			time.Sleep(wait)
		}
	}
*/
package gotick
