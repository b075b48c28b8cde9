// Package cronplan plans wall-clock cron jobs on top of a pump-driven
// scheduler.
//
// The planner translates each cron expression into a chain of one-shot
// timeouts: it computes the next activation, schedules a timeout for the
// remaining delay, and re-arms after every fire. The host keeps a single pump
// loop for everything, millisecond work and calendar work alike.
//
//	s := sched.New()
//	p, err := cronplan.New(cronplan.Config{Scheduler: s})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	_ = p.Schedule(nil, "nightly-compact", "0 3 * * *", compactStore)
//	_ = p.Schedule(nil, "heartbeat", "*/30 * * * * *", sendHeartbeat)
//
//	for {
//		s.Tick()
//		if d, ok := s.NextScheduleIn(); ok {
//			time.Sleep(d)
//		} else {
//			time.Sleep(100 * time.Millisecond)
//		}
//	}
//
// Expressions use the robfig/cron v3 syntax with an optional leading seconds
// field, so both "*/5 * * * *" (every five minutes) and "*/5 * * * * *"
// (every five seconds) parse, as do descriptors such as @hourly and @daily.
//
// Jobs are replaced by name: scheduling an existing name cancels the previous
// chain first. A job that reaches its MaxRuns limit removes itself. Because
// the planner re-reads the wall clock at every fire, a pump that stalls does
// not accumulate schedule drift; the next activation is always computed from
// real time.
//
// Job callbacks run on the pump goroutine, inside Tick, with no planner or
// scheduler lock held.
package cronplan
