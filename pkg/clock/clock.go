// Package clock extends a wrapping 32-bit millisecond counter into a
// monotonically non-decreasing 48-bit logical time.
//
// Hosts with a hardware millisecond counter see it wrap to zero roughly
// every 49.7 days. A Clock detects each wrap by comparing fresh readings
// against the last extended value and folds it into a 16-bit rollover
// epoch, so scheduling deadlines keep ordering correctly across the
// boundary. Three construction-time strategies cover different host
// concurrency regimes, from single-goroutine pumps to fully concurrent
// callers on platforms with atomic support.
//
// Example usage:
//
//	c, err := clock.New(clock.Config{Source: clock.NewSystemSource()})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	now := c.Now()
//	deadline := now.Add(500 * time.Millisecond)
package clock

import (
	"sync"
	"sync/atomic"

	gterrors "github.com/vnykmshr/gotick/pkg/common/errors"
	"github.com/vnykmshr/gotick/pkg/common/validation"
)

// Clock extends fresh counter readings into monotone logical time.
type Clock interface {
	// Now samples the source once and returns the extended logical time.
	// Results never decrease within one goroutine's view.
	Now() Time
}

// Strategy selects the concurrency regime a Clock is built for.
type Strategy int

const (
	// StrategyAtomic serves fully concurrent callers with a compare-and-swap
	// fast path. The epoch increment on rollover is paired with the raw
	// publish under a small lock; a caller observing the value change
	// mid-extension retries. This is the default.
	StrategyAtomic Strategy = iota

	// StrategySerial performs plain read-modify-write with no
	// synchronization, for hosts that sample time from a single goroutine.
	StrategySerial

	// StrategyMutex guards every extension with a mutex, for hosts that
	// need concurrent callers without atomic support. Callers may briefly
	// contend near the rollover boundary.
	StrategyMutex
)

// String returns the strategy name for diagnostics.
func (s Strategy) String() string {
	switch s {
	case StrategyAtomic:
		return "atomic"
	case StrategySerial:
		return "serial"
	case StrategyMutex:
		return "mutex"
	default:
		return "unknown"
	}
}

// Config holds construction parameters for a Clock.
type Config struct {
	// Source supplies fresh 32-bit readings. Required.
	Source Source

	// Strategy selects the concurrency regime. Defaults to StrategyAtomic.
	Strategy Strategy
}

// New creates a Clock for the given configuration.
func New(cfg Config) (Clock, error) {
	if cfg.Source == nil {
		return nil, validation.ValidateNotNil("clock", "source", nil)
	}

	switch cfg.Strategy {
	case StrategySerial:
		return &serialClock{src: cfg.Source}, nil
	case StrategyMutex:
		return &mutexClock{src: cfg.Source}, nil
	case StrategyAtomic:
		return &atomicClock{src: cfg.Source}, nil
	default:
		return nil, gterrors.NewValidationError("clock", "strategy", cfg.Strategy, "unknown strategy").
			WithHint("use StrategyAtomic, StrategySerial, or StrategyMutex")
	}
}

// NewSystem creates an atomic-strategy Clock over the process monotonic clock.
func NewSystem() Clock {
	return &atomicClock{src: NewSystemSource()}
}

// serialClock extends readings without synchronization. Safe only when all
// callers share one goroutine.
type serialClock struct {
	src  Source
	last uint64
}

func (c *serialClock) Now() Time {
	next, _ := advance(c.last, c.src.Millis())
	c.last = next
	return Time(next)
}

// mutexClock serializes every extension behind a mutex.
type mutexClock struct {
	src  Source
	mu   sync.Mutex
	last uint64
}

func (c *mutexClock) Now() Time {
	raw := c.src.Millis()
	c.mu.Lock()
	next, _ := advance(c.last, raw)
	c.last = next
	c.mu.Unlock()
	return Time(next)
}

// atomicClock keeps the packed logical time in a single atomic word. The
// common case is one compare-and-swap; rollover publication is serialized
// by mu so exactly one caller pairs the epoch increment with the new raw
// reading, and everyone else recomputes from the published word.
type atomicClock struct {
	src  Source
	last atomic.Uint64
	mu   sync.Mutex
}

func (c *atomicClock) Now() Time {
	raw := c.src.Millis()
	for {
		last := c.last.Load()
		next, rollover := advance(last, raw)
		if next == last {
			// Same reading, or a small regression held at the last value.
			return Time(last)
		}
		if !rollover {
			if c.last.CompareAndSwap(last, next) {
				return Time(next)
			}
			continue
		}
		c.mu.Lock()
		swapped := c.last.CompareAndSwap(last, next)
		c.mu.Unlock()
		if swapped {
			return Time(next)
		}
		// The word changed mid-extension; recompute against the new epoch.
	}
}
