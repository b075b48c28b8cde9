package sched

import "time"

// RetryConfig controls a bounded-attempt retry chain.
type RetryConfig struct {
	// InitialWait is the delay between the first and second attempts.
	// Negative values are treated as zero.
	InitialWait time.Duration

	// MaxAttempts bounds the number of times the attempt function runs.
	// A non-positive value schedules nothing.
	MaxAttempts int

	// Backoff multiplies the wait after each attempt. Factors below 1.0
	// would shrink or freeze the wait, so they are clamped to 1.0 with a
	// logged diagnostic.
	Backoff float64
}

// AttemptFunc runs one attempt of a retry chain. It receives the 1-based
// attempt number and returns true to request another attempt.
type AttemptFunc func(attempt int) bool

// retryContext is the shared state behind one retry chain. Every scheduled
// step captures the same context in its callback, so the chain survives
// item recycling between attempts; clearing the last step's callback
// releases it. All mutation happens on the pump goroutine.
type retryContext struct {
	s         *Scheduler
	owner     Owner
	ident     Ident
	attempt   AttemptFunc
	remaining int
	wait      time.Duration
	backoff   float64
	attemptNo int
}

// SetRetry schedules a bounded retry chain: the first attempt runs on the
// next pump pass, every later attempt after the current wait, which the
// backoff factor then multiplies. The chain stops when the attempt
// function reports done, attempts run out, or the chain is cancelled. A
// chain replaces any existing retry chain with the same owner and ident.
func (s *Scheduler) SetRetry(owner Owner, id Ident, cfg RetryConfig, attempt AttemptFunc) {
	if attempt == nil {
		panic("sched: nil attempt function")
	}
	if cfg.MaxAttempts <= 0 {
		return
	}

	wait := cfg.InitialWait
	if wait < 0 {
		wait = 0
	}
	backoff := cfg.Backoff
	if backoff < 1.0 {
		s.logger.Warn().
			Float64("factor", cfg.Backoff).
			Stringer("ident", id).
			Msg("backoff factor below 1.0, clamped")
		backoff = 1.0
	}

	ctx := &retryContext{
		s:         s,
		owner:     owner,
		ident:     id,
		attempt:   attempt,
		remaining: cfg.MaxAttempts,
		wait:      wait,
		backoff:   backoff,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(owner, id, Timeout, true)
	s.scheduleLocked(owner, id, Timeout, 0, 0, ctx.run, true).rctx = ctx
}

// run executes one attempt. It is the callback of every step item in the
// chain, so it runs on the pump goroutine with the scheduler unlocked.
func (c *retryContext) run() {
	c.remaining--
	c.attemptNo++
	c.s.inst.retryAttempt()

	again := c.attempt(c.attemptNo)
	if !again {
		return
	}
	if c.remaining <= 0 {
		c.s.inst.retryExhausted()
		c.s.logger.Debug().
			Stringer("ident", c.ident).
			Int("attempts", c.attemptNo).
			Msg("retry attempts exhausted")
		return
	}

	delay := c.wait
	c.wait = time.Duration(float64(c.wait) * c.backoff)
	c.s.rescheduleRetry(c, delay)
}

// rescheduleRetry schedules the next step of a chain unless a cancellation
// raced the attempt that just ran. The cancelled step is still findable, as
// the executing slot or a deleted entry in a container, which is what makes
// the no-resurrection check possible.
func (s *Scheduler) rescheduleRetry(c *retryContext, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.retryGhostLocked(c) {
		return
	}
	s.scheduleLocked(c.owner, c.ident, Timeout, 0, delay, c.run, true).rctx = c
}

// retryGhostLocked reports whether a cancelled step of this chain is still
// awaiting reclamation anywhere. Steps of other chains under the same
// owner and ident, for example after a replacing SetRetry, do not count.
func (s *Scheduler) retryGhostLocked(c *retryContext) bool {
	ghost := func(it *item) bool {
		return it != nil && it.deleted && it.rctx == c
	}

	for _, it := range s.heap {
		if ghost(it) {
			return true
		}
	}
	for _, it := range s.staging {
		if ghost(it) {
			return true
		}
	}
	for _, it := range s.deferq {
		if ghost(it) {
			return true
		}
	}
	return ghost(s.executing)
}
