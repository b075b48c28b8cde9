package sched

import (
	"container/heap"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vnykmshr/gotick/pkg/clock"
	"github.com/vnykmshr/gotick/pkg/common/validation"
	"github.com/vnykmshr/gotick/pkg/metrics"
)

const (
	// DefaultPoolCapacity bounds the freelist of reclaimed items.
	DefaultPoolCapacity = 64

	// DefaultCompactionThreshold is the number of logically deleted items
	// that triggers a full heap compaction on the next pump pass.
	DefaultCompactionThreshold = 16

	// maxFirstRunJitter caps the first-run offset applied to intervals.
	maxFirstRunJitter = 30 * time.Second

	// noDeadline marks an empty earliest-deadline hint.
	noDeadline = ^uint64(0)
)

// CancelOnly is the reserved sentinel delay. SetTimeout with a negative
// delay cancels any matching item and schedules nothing.
const CancelOnly time.Duration = -1

// JitterFunc draws a first-run offset in [0, max).
type JitterFunc func(max time.Duration) time.Duration

// TimeoutOptions adjusts SetTimeoutWithOptions behavior.
type TimeoutOptions struct {
	// NoReplace keeps any existing live item with the same owner,
	// identity, and kind instead of cancelling it first.
	NoReplace bool
}

// Config holds construction parameters for a Scheduler.
type Config struct {
	// Source supplies fresh 32-bit millisecond readings for the logical
	// clock. Defaults to a SystemSource over the process monotonic clock.
	Source clock.Source

	// Concurrency selects the logical clock strategy. StrategyAtomic also
	// enables the lock-free idle fast path in Tick. Defaults to
	// StrategyAtomic.
	Concurrency clock.Strategy

	// PoolCapacity bounds the freelist of reclaimed items. Defaults to
	// DefaultPoolCapacity.
	PoolCapacity int

	// CompactionThreshold is the deleted-item count that triggers a full
	// heap compaction. Defaults to DefaultCompactionThreshold.
	CompactionThreshold int

	// Jitter draws the first-run offset for intervals, bounded by
	// min(interval/2, 30s). Defaults to the shared PRNG. Tests inject a
	// deterministic function.
	Jitter JitterFunc

	// Logger receives scheduler diagnostics. Defaults to a no-op logger.
	Logger *zerolog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry

	// Name labels metrics for this scheduler instance. Defaults to
	// "default".
	Name string
}

// Scheduler is a cooperative, pump-driven task scheduler. Work becomes due
// against a 48-bit logical clock and executes only inside Tick, which the
// host calls from a single goroutine. Registration and cancellation are
// safe from any goroutine; callbacks may re-enter every operation except
// Tick itself.
type Scheduler struct {
	clk       clock.Clock
	logger    zerolog.Logger
	jitter    JitterFunc
	inst      *instruments
	fast      bool
	compactAt int

	mu        sync.Mutex
	heap      itemHeap
	staging   []*item
	deferq    []*item
	pool      freelist
	executing *item
	deleted   int
	ticking   bool
	lastEpoch uint16
	epochSeen bool

	// nextDue is the earliest pending deadline, or noDeadline when idle.
	// Mutators maintain it under mu; Tick may read it without the lock
	// when the atomic strategy is selected.
	nextDue atomic.Uint64
}

// New creates a Scheduler with default configuration.
func New() *Scheduler {
	s, err := NewWithConfig(Config{})
	if err != nil {
		panic(err)
	}
	return s
}

// NewWithConfig creates a Scheduler with the given configuration.
func NewWithConfig(cfg Config) (*Scheduler, error) {
	if cfg.Source == nil {
		cfg.Source = clock.NewSystemSource()
	}
	if cfg.PoolCapacity == 0 {
		cfg.PoolCapacity = DefaultPoolCapacity
	}
	if err := validation.ValidatePositive("sched", "poolCapacity", cfg.PoolCapacity); err != nil {
		return nil, err
	}
	if cfg.CompactionThreshold == 0 {
		cfg.CompactionThreshold = DefaultCompactionThreshold
	}
	if err := validation.ValidatePositive("sched", "compactionThreshold", cfg.CompactionThreshold); err != nil {
		return nil, err
	}

	clk, err := clock.New(clock.Config{Source: cfg.Source, Strategy: cfg.Concurrency})
	if err != nil {
		return nil, err
	}

	jitter := cfg.Jitter
	if jitter == nil {
		jitter = defaultJitter
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	s := &Scheduler{
		clk:       clk,
		logger:    logger,
		jitter:    jitter,
		fast:      cfg.Concurrency == clock.StrategyAtomic,
		compactAt: cfg.CompactionThreshold,
		pool:      newFreelist(cfg.PoolCapacity),
	}
	if cfg.Metrics != nil {
		name := cfg.Name
		if name == "" {
			name = "default"
		}
		s.inst = newInstruments(cfg.Metrics, name)
	}
	s.nextDue.Store(noDeadline)
	return s, nil
}

func defaultJitter(max time.Duration) time.Duration {
	return time.Duration(rand.Int63n(int64(max)))
}

// Now returns the current logical time of the scheduler's clock.
func (s *Scheduler) Now() clock.Time {
	return s.clk.Now()
}

// SetTimeout schedules fn to run once after delay, replacing any existing
// live timeout with the same owner and ident. A zero delay routes the work
// through the defer queue, which preserves submission order; it runs on the
// next pump pass. A negative delay is the CancelOnly sentinel: matching
// items are cancelled and nothing is scheduled.
func (s *Scheduler) SetTimeout(owner Owner, id Ident, delay time.Duration, fn func()) {
	s.SetTimeoutWithOptions(owner, id, delay, fn, TimeoutOptions{})
}

// SetTimeoutWithOptions is SetTimeout with explicit options.
func (s *Scheduler) SetTimeoutWithOptions(owner Owner, id Ident, delay time.Duration, fn func(), opts TimeoutOptions) {
	if fn == nil && delay >= 0 {
		panic("sched: nil callback")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !opts.NoReplace {
		s.cancelLocked(owner, id, Timeout, false)
	}
	if delay < 0 {
		return
	}
	s.scheduleLocked(owner, id, Timeout, 0, delay, fn, false)
}

// Defer schedules fn to run on the next pump pass. Deferred work executes
// in strict submission order.
func (s *Scheduler) Defer(owner Owner, id Ident, fn func()) {
	s.SetTimeout(owner, id, 0, fn)
}

// SetInterval schedules fn to run every interval, replacing any existing
// live interval with the same owner and ident. The first run is pushed out
// by a random jitter bounded by min(interval/2, 30s) so identically
// configured components spread out; later runs are anchored to the
// scheduled fire time and do not drift when the pump runs late. Panics if
// interval is not positive.
func (s *Scheduler) SetInterval(owner Owner, id Ident, interval time.Duration, fn func()) {
	if interval <= 0 {
		panic("sched: non-positive interval for SetInterval")
	}
	if fn == nil {
		panic("sched: nil callback")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(owner, id, Interval, false)
	s.scheduleLocked(owner, id, Interval, interval, interval+s.firstRunJitter(interval), fn, false)
}

// CancelTimeout cancels the live timeout registered under owner and id.
// It reports whether anything matched. The callback will not run after
// CancelTimeout returns unless it is already mid-execution on the pump
// goroutine.
func (s *Scheduler) CancelTimeout(owner Owner, id Ident) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(owner, id, Timeout, false)
}

// CancelInterval cancels the live interval registered under owner and id.
// A cancellation racing the current execution lets it finish but prevents
// the re-arm.
func (s *Scheduler) CancelInterval(owner Owner, id Ident) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(owner, id, Interval, false)
}

// CancelRetry cancels the retry chain registered under owner and id. The
// chain will not reschedule further attempts.
func (s *Scheduler) CancelRetry(owner Owner, id Ident) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(owner, id, Timeout, true)
}

// NextScheduleIn returns how long the host may idle before the next pending
// item is due: zero when work is already due, false when nothing is pending.
func (s *Scheduler) NextScheduleIn() (time.Duration, bool) {
	now := s.clk.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	earliest, ok := s.earliestLocked()
	if !ok {
		return 0, false
	}
	if earliest <= now {
		return 0, true
	}
	return earliest.Sub(now), true
}

// Len returns the number of live items awaiting execution.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked()
}

// Stats is a point-in-time snapshot of scheduler internals.
type Stats struct {
	Pending  int    // live items awaiting execution
	Deleted  int    // logically deleted items awaiting reclamation
	PoolFree int    // reclaimed items available for reuse
	Epoch    uint16 // current rollover epoch of the logical clock
}

// Stats returns a snapshot of scheduler internals.
func (s *Scheduler) Stats() Stats {
	epoch := s.clk.Now().Epoch()
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Pending:  s.liveLocked(),
		Deleted:  s.deleted,
		PoolFree: s.pool.size(),
		Epoch:    epoch,
	}
}

// Tick runs one pump pass: drain the defer queue, merge staged work, reap
// and compact deleted items, then execute everything due at a single fresh
// clock sample. Call it from exactly one goroutine. Callbacks run with the
// scheduler unlocked and may schedule or cancel freely, but must not call
// Tick; re-entry panics.
func (s *Scheduler) Tick() {
	now := s.clk.Now()
	if s.fast && s.nextDue.Load() > uint64(now) {
		return
	}

	var start time.Time
	if s.inst != nil {
		start = time.Now()
	}

	s.mu.Lock()
	if s.ticking {
		s.mu.Unlock()
		panic("sched: Tick re-entered while a pass is running")
	}
	s.ticking = true

	s.observeEpochLocked(now)
	s.drainDeferLocked()
	s.mergeStagingLocked()
	s.reapTopLocked()
	if s.deleted > s.compactAt {
		s.compactLocked()
	}
	s.runDueLocked(now)
	s.mergeStagingLocked()
	s.refreshHintLocked()
	if s.inst != nil {
		s.inst.pending(s.liveLocked())
	}

	s.ticking = false
	s.mu.Unlock()

	if s.inst != nil {
		s.inst.tick(time.Since(start))
	}
}

// scheduleLocked acquires an item and places it in the defer queue (zero
// delay timeouts) or the staging buffer. The next-execution time comes from
// a fresh clock sample.
func (s *Scheduler) scheduleLocked(owner Owner, id Ident, kind Kind, interval, delay time.Duration, fn func(), retry bool) *item {
	it, reused := s.pool.get()
	if reused {
		s.inst.poolReused()
	}
	it.owner = owner
	it.ident = id
	it.kind = kind
	it.interval = interval
	it.fn = fn
	it.retry = retry

	now := s.clk.Now()
	if kind == Timeout && delay == 0 {
		it.runAt = now
		s.deferq = append(s.deferq, it)
	} else {
		it.runAt = now.Add(delay)
		s.staging = append(s.staging, it)
	}
	s.lowerHintLocked(it.runAt)
	s.inst.scheduled(kind)
	return it
}

// cancelLocked marks every live match across the heap, staging buffer,
// defer queue, and the executing slot. It reports whether anything matched.
func (s *Scheduler) cancelLocked(owner Owner, id Ident, kind Kind, retry bool) bool {
	matched := false
	mark := func(it *item) {
		if !it.matches(owner, id, kind, retry) {
			return
		}
		it.deleted = true
		s.deleted++
		s.inst.cancelled(kind)
		matched = true
	}

	for _, it := range s.heap {
		mark(it)
	}
	for _, it := range s.staging {
		mark(it)
	}
	for _, it := range s.deferq {
		mark(it)
	}
	if s.executing != nil {
		mark(s.executing)
	}
	return matched
}

// drainDeferLocked runs the defer queue up to the length snapshot taken at
// entry. Work deferred by these callbacks lands past the snapshot and waits
// for the next pass.
func (s *Scheduler) drainDeferLocked() {
	n := len(s.deferq)
	for i := 0; i < n; i++ {
		it := s.deferq[i]
		if it.deleted {
			s.deleted--
			s.reapLocked(it)
			continue
		}
		if it.owner != nil && it.owner.Failed() {
			s.skipLocked(it)
			continue
		}

		s.executing = it
		s.mu.Unlock()
		it.fn()
		s.mu.Lock()
		s.executing = nil

		s.inst.executed(Timeout)
		if it.deleted {
			s.deleted--
		}
		s.recycleLocked(it)
	}

	m := copy(s.deferq, s.deferq[n:])
	for i := m; i < len(s.deferq); i++ {
		s.deferq[i] = nil
	}
	s.deferq = s.deferq[:m]
}

// mergeStagingLocked moves staged items into the heap.
func (s *Scheduler) mergeStagingLocked() {
	for _, it := range s.staging {
		heap.Push(&s.heap, it)
	}
	for i := range s.staging {
		s.staging[i] = nil
	}
	s.staging = s.staging[:0]
}

// reapTopLocked reclaims deleted items sitting at the top of the heap.
func (s *Scheduler) reapTopLocked() {
	for {
		top := s.heap.peek()
		if top == nil || !top.deleted {
			return
		}
		heap.Pop(&s.heap)
		s.deleted--
		s.reapLocked(top)
	}
}

// compactLocked rebuilds the heap from live items only.
func (s *Scheduler) compactLocked() {
	before := s.heap.Len()
	kept := make(itemHeap, 0, before)
	for _, it := range s.heap {
		if it.deleted {
			s.deleted--
			s.reapLocked(it)
			continue
		}
		kept = append(kept, it)
	}
	s.heap = kept
	heap.Init(&s.heap)
	s.inst.compaction()
	s.logger.Debug().
		Int("reclaimed", before-len(kept)).
		Int("live", len(kept)).
		Msg("compacted heap")
}

// runDueLocked executes every item due at now. Items the callbacks stage,
// including re-armed intervals, wait for the next pass.
func (s *Scheduler) runDueLocked(now clock.Time) {
	for {
		top := s.heap.peek()
		if top == nil || top.runAt > now {
			return
		}
		heap.Pop(&s.heap)

		if top.deleted {
			s.deleted--
			s.reapLocked(top)
			continue
		}
		if top.owner != nil && top.owner.Failed() {
			s.skipLocked(top)
			continue
		}

		kind := top.kind
		s.executing = top
		s.mu.Unlock()
		top.fn()
		s.mu.Lock()
		s.executing = nil
		s.inst.executed(kind)

		switch {
		case top.deleted:
			// Cancelled by its own callback or a concurrent caller.
			s.deleted--
			s.reapLocked(top)
		case top.kind == Interval:
			// Anchor the re-arm to the scheduled fire time, not the pump
			// time, so lateness does not accumulate.
			top.runAt = top.runAt.Add(top.interval)
			s.staging = append(s.staging, top)
		default:
			s.recycleLocked(top)
		}
	}
}

// reapLocked reclaims a logically deleted item.
func (s *Scheduler) reapLocked(it *item) {
	s.inst.reaped()
	s.recycleLocked(it)
}

// skipLocked reclaims a due item whose owner reported permanent failure.
func (s *Scheduler) skipLocked(it *item) {
	s.logger.Debug().
		Stringer("ident", it.ident).
		Msg("owner permanently failed, skipping item")
	s.inst.skipped()
	s.recycleLocked(it)
}

// recycleLocked clears an item and returns it to the freelist. Clearing
// breaks retention of callbacks, owners, and retry contexts.
func (s *Scheduler) recycleLocked(it *item) {
	it.owner = nil
	it.fn = nil
	it.ident = Ident{}
	it.runAt = 0
	it.interval = 0
	it.rctx = nil
	it.kind = Timeout
	it.deleted = false
	it.retry = false
	if !s.pool.put(it) {
		s.inst.poolDropped()
	}
}

// liveLocked counts items that are still scheduled to run.
func (s *Scheduler) liveLocked() int {
	n := 0
	for _, it := range s.heap {
		if !it.deleted {
			n++
		}
	}
	for _, it := range s.staging {
		if !it.deleted {
			n++
		}
	}
	for _, it := range s.deferq {
		if !it.deleted {
			n++
		}
	}
	return n
}

// earliestLocked finds the soonest pending deadline across all containers.
func (s *Scheduler) earliestLocked() (clock.Time, bool) {
	var best clock.Time
	found := false
	consider := func(t clock.Time) {
		if !found || t < best {
			best = t
			found = true
		}
	}

	if len(s.deferq) > 0 {
		consider(s.deferq[0].runAt)
	}
	if top := s.heap.peek(); top != nil {
		consider(top.runAt)
	}
	for _, it := range s.staging {
		consider(it.runAt)
	}
	return best, found
}

// lowerHintLocked lowers the earliest-deadline hint. Raising it back up
// happens only in refreshHintLocked at the end of a pass.
func (s *Scheduler) lowerHintLocked(t clock.Time) {
	if uint64(t) < s.nextDue.Load() {
		s.nextDue.Store(uint64(t))
	}
}

// refreshHintLocked recomputes the earliest-deadline hint exactly.
func (s *Scheduler) refreshHintLocked() {
	best := noDeadline
	if len(s.deferq) > 0 {
		best = uint64(s.deferq[0].runAt)
	}
	if top := s.heap.peek(); top != nil && uint64(top.runAt) < best {
		best = uint64(top.runAt)
	}
	for _, it := range s.staging {
		if uint64(it.runAt) < best {
			best = uint64(it.runAt)
		}
	}
	s.nextDue.Store(best)
}

// observeEpochLocked counts rollovers crossed since the previous pass.
func (s *Scheduler) observeEpochLocked(now clock.Time) {
	epoch := now.Epoch()
	if !s.epochSeen {
		s.lastEpoch = epoch
		s.epochSeen = true
		return
	}
	if delta := epoch - s.lastEpoch; delta != 0 {
		s.inst.rollovers(delta)
		s.lastEpoch = epoch
	}
}

// firstRunJitter draws the first-run offset for an interval.
func (s *Scheduler) firstRunJitter(interval time.Duration) time.Duration {
	max := interval / 2
	if max > maxFirstRunJitter {
		max = maxFirstRunJitter
	}
	if max <= 0 {
		return 0
	}
	return s.jitter(max)
}
