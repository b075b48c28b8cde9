package testutil

import (
	"sync"
	"sync/atomic"
	"time"
)

// FakeSource implements clock.Source for testing with a controllable
// 32-bit millisecond counter. It is used across scheduler tests to drive
// pump passes without real delays, including through counter rollover.
type FakeSource struct {
	mu  sync.Mutex
	now uint32
}

// NewFakeSource creates a FakeSource starting at the given raw reading.
func NewFakeSource(start uint32) *FakeSource {
	return &FakeSource{now: start}
}

// Millis returns the current raw reading.
func (f *FakeSource) Millis() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the counter forward by the given duration. Wrapping past
// the 32-bit range is intentional and exercises rollover handling.
func (f *FakeSource) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += uint32(d.Milliseconds())
}

// Set sets the counter to a specific raw reading.
func (f *FakeSource) Set(raw uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = raw
}

// StubOwner implements sched.Owner with a flippable failure state.
type StubOwner struct {
	failed atomic.Bool
}

// NewStubOwner creates an owner in the healthy state.
func NewStubOwner() *StubOwner {
	return &StubOwner{}
}

// Failed reports whether the owner has been marked permanently failed.
func (o *StubOwner) Failed() bool {
	return o.failed.Load()
}

// Fail marks the owner as permanently failed.
func (o *StubOwner) Fail() {
	o.failed.Store(true)
}

// Restore clears the failure state.
func (o *StubOwner) Restore() {
	o.failed.Store(false)
}

// NoJitter is a jitter function that always returns zero, making interval
// first-run times deterministic in tests.
func NoJitter(max time.Duration) time.Duration {
	return 0
}
