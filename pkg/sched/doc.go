/*
Package sched provides a cooperative task scheduler driven by an explicit pump.

The scheduler never starts goroutines and never sleeps. The host application
owns the loop: it calls Tick whenever it wants due work to run, and every
callback executes in-line on that goroutine. This makes the package suitable
for single-threaded event loops, simulation harnesses, and embedded-style
firmware ports where the caller controls all timing.

Basic Usage:

	s := sched.New()

	s.SetTimeout(nil, sched.StaticName("greet"), time.Second, func() {
		fmt.Println("hello after one second")
	})

	s.SetInterval(nil, sched.StaticName("heartbeat"), 30*time.Second, sendHeartbeat)

	// Host pump loop.
	for {
		s.Tick()
		if d, ok := s.NextScheduleIn(); ok {
			time.Sleep(d)
		} else {
			time.Sleep(10 * time.Millisecond)
		}
	}

Key Features:

The scheduler provides:
  - One-shot timeouts and repeating intervals with millisecond resolution
  - Zero-delay deferral to the next pump pass in strict FIFO order
  - Retry chains with capped attempts and exponential backoff
  - Replace-by-identity semantics for idempotent scheduling
  - Owner gating that silently drops work for failed components
  - A bounded free list that recycles entries without steady-state allocation
  - A 48-bit logical clock that survives 32-bit millisecond counter rollover
  - Optional Prometheus metrics and zerolog logging

Identity and Replacement:

Every entry carries an owner and an identity. Scheduling a timeout whose
owner, identity, and kind match a pending entry cancels the pending entry
first, so repeated calls keep exactly one outstanding instance:

	s.SetTimeout(conn, sched.StaticName("idle-close"), time.Minute, closeIdle)
	// Later, on activity: re-arms the same timeout instead of stacking a second one.
	s.SetTimeout(conn, sched.StaticName("idle-close"), time.Minute, closeIdle)

Identities come in three forms. StaticName compares string contents and suits
compile-time constant names. HashedName folds an arbitrary runtime string to a
64-bit digest, keeping entries small when names are built dynamically.
NumericID carries an integer handle such as a session or request number:

	sched.StaticName("idle-close")
	sched.HashedName(fmt.Sprintf("conn-%s-probe", conn.RemoteAddr()))
	sched.NumericID(sessionID)

The zero Ident schedules an anonymous entry. Anonymous entries never match
anything, so they neither replace one another nor respond to cancellation.
Use them for fire-and-forget work only.

A negative delay cancels without scheduling. The CancelOnly constant makes
that intent explicit at call sites:

	s.SetTimeout(conn, sched.StaticName("idle-close"), sched.CancelOnly, nil)

Owners:

An Owner reports whether the component that scheduled an entry has failed.
The pump polls Failed immediately before each execution and silently discards
the entry when it returns true, so a crashed subsystem's callbacks never run
against torn state:

	type connState struct{ dead atomic.Bool }

	func (c *connState) Failed() bool { return c.dead.Load() }

A nil owner is always runnable. Owners are compared by interface identity
during cancellation and replacement, so two distinct owner values never match
even when they are deeply equal.

Deferred Work:

Defer schedules a callback for the next pump pass without consulting the
clock. Deferred entries run in exactly the order they were submitted, ahead
of any deadline work in the same pass:

	s.Defer(nil, sched.Ident{}, func() { flushDirtyState() })

Callbacks that defer further work do not extend the current pass. The pump
drains only the entries present when the pass began; anything submitted
during the drain waits for the next Tick.

Retries:

SetRetry schedules an attempt function that reports whether another attempt
is wanted. The first attempt runs on the next pass, and each subsequent
attempt waits the current interval before the interval is multiplied by the
backoff factor:

	s.SetRetry(svc, sched.StaticName("dial-upstream"), sched.RetryConfig{
		InitialWait: 100 * time.Millisecond,
		MaxAttempts: 5,
		Backoff:     2.0,
	}, func(attempt int) bool {
		return dial() != nil // retry while dialing fails
	})

With those settings the attempts land at roughly 0ms, 100ms, 300ms, 700ms,
and 1500ms. CancelRetry stops a chain between attempts; a chain cancelled
mid-flight finishes the attempt already running and schedules nothing more.

Intervals:

Repeating entries re-arm from the scheduled fire time rather than from the
moment the callback ran, so late pumps do not accumulate drift. The first
run of an interval is offset by a random jitter of up to half the period
(capped at 30 seconds) to spread synchronized start-up load; supply a custom
JitterFunc in Config to change or disable this.

The Pump:

Tick runs one pass: it drains the deferred queue, merges newly scheduled
entries, discards cancelled entries, compacts the deadline heap when enough
dead entries accumulate, and executes everything whose deadline has arrived.
Callbacks run with no internal lock held, so they may freely schedule and
cancel. Tick is not re-entrant; calling it from inside a callback panics.

When the clock was built with StrategyAtomic (the default), a Tick with no
due work returns without taking the internal lock at all, making an idle
pump cheap enough for tight loops.

Configuration:

	s, err := sched.NewWithConfig(sched.Config{
		Source:              clockSource,          // platform millisecond counter
		Concurrency:         clock.StrategyAtomic, // clock extension strategy
		PoolCapacity:        128,                  // recycled entries kept
		CompactionThreshold: 32,                   // dead entries tolerated in the heap
		Logger:              &logger,              // zerolog, nil disables
		Metrics:             metrics.DefaultRegistry,
		Name:                "mainloop",
	})

Monitoring:

	st := s.Stats()
	fmt.Printf("pending=%d deleted=%d poolFree=%d epoch=%d\n",
		st.Pending, st.Deleted, st.PoolFree, st.Epoch)

With a metrics Registry configured, the scheduler also exports Prometheus
counters for scheduled, executed, cancelled, skipped, and reaped entries,
retry activity, compactions, pool behaviour, clock rollovers, and per-pass
duration.

Thread Safety:

Scheduling and cancellation are safe from any goroutine. Tick must be called
from one goroutine at a time; concurrent pumps are not supported and re-entry
panics. Callbacks always run on the pumping goroutine.

Performance Characteristics:

  - Scheduling: O(1), one free-list pop and one staging append
  - Cancellation: O(pending), a linear mark over live containers
  - Tick with nothing due: O(1), lock-free under StrategyAtomic
  - Tick with k due entries: O(k log n) heap maintenance
  - Steady state: zero allocation once the free list is primed

Common Pitfalls:

 1. Forgetting to pump. Nothing runs until the host calls Tick.
 2. Expecting anonymous entries to be cancellable. Give work an identity if
    it may need to be cancelled or replaced.
 3. Calling Tick from inside a callback. The pump is not re-entrant.
 4. Assuming sub-millisecond precision. Deadlines are millisecond-grained
    and fire on the first pass at or after expiry.
 5. Holding an entry's callback closure over large state. Entries are
    recycled, but the closure lives until the entry runs or is reaped.
*/
package sched
