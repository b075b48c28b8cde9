package sched

import (
	"fmt"
	"time"

	"github.com/vnykmshr/gotick/internal/testutil"
)

func ExampleScheduler_basic() {
	src := testutil.NewFakeSource(0)
	s, _ := NewWithConfig(Config{Source: src, Jitter: testutil.NoJitter})

	// Schedule work 100ms out, then drive the clock and pump.
	s.SetTimeout(nil, StaticName("greet"), 100*time.Millisecond, func() {
		fmt.Println("due work ran")
	})

	src.Advance(100 * time.Millisecond)
	s.Tick()
	// Output: due work ran
}

func ExampleScheduler_replacement() {
	src := testutil.NewFakeSource(0)
	s, _ := NewWithConfig(Config{Source: src, Jitter: testutil.NoJitter})

	// Re-arming the same owner and ident keeps one outstanding instance.
	for i := 0; i < 3; i++ {
		s.SetTimeout(nil, StaticName("idle-close"), 50*time.Millisecond, func() {
			fmt.Println("connection closed")
		})
	}

	src.Advance(50 * time.Millisecond)
	s.Tick()
	// Output: connection closed
}

func ExampleScheduler_deferredOrder() {
	src := testutil.NewFakeSource(0)
	s, _ := NewWithConfig(Config{Source: src, Jitter: testutil.NoJitter})

	// Zero-delay work runs on the next pass in submission order.
	s.Defer(nil, Ident{}, func() { fmt.Println("first") })
	s.Defer(nil, Ident{}, func() { fmt.Println("second") })
	s.Defer(nil, Ident{}, func() { fmt.Println("third") })

	s.Tick()
	// Output:
	// first
	// second
	// third
}

func ExampleScheduler_SetRetry() {
	src := testutil.NewFakeSource(0)
	s, _ := NewWithConfig(Config{Source: src, Jitter: testutil.NoJitter})

	// Attempts land at 0ms, 100ms, and 300ms.
	s.SetRetry(nil, StaticName("dial-upstream"), RetryConfig{
		InitialWait: 100 * time.Millisecond,
		MaxAttempts: 3,
		Backoff:     2.0,
	}, func(attempt int) bool {
		fmt.Printf("attempt %d\n", attempt)
		return true // keep retrying until attempts run out
	})

	for ms := 0; ms <= 400; ms += 50 {
		src.Set(uint32(ms))
		s.Tick()
	}
	// Output:
	// attempt 1
	// attempt 2
	// attempt 3
}

func ExampleScheduler_SetInterval() {
	src := testutil.NewFakeSource(0)
	s, _ := NewWithConfig(Config{Source: src, Jitter: testutil.NoJitter})

	n := 0
	s.SetInterval(nil, StaticName("heartbeat"), 500*time.Millisecond, func() {
		n++
		fmt.Printf("heartbeat %d\n", n)
	})

	for ms := 0; ms <= 1500; ms += 100 {
		src.Set(uint32(ms))
		s.Tick()
	}
	// Output:
	// heartbeat 1
	// heartbeat 2
	// heartbeat 3
}

func ExampleScheduler_hostLoop() {
	s := New()

	s.SetInterval(nil, StaticName("flush"), 30*time.Second, func() {
		// Flush buffered writes.
	})

	// A real host pumps until shutdown, sleeping no longer than the next
	// deadline allows.
	for pass := 0; pass < 3; pass++ {
		s.Tick()
		if d, ok := s.NextScheduleIn(); ok && d > 0 {
			_ = d // time.Sleep(d) in a real loop
		}
	}
}
