package benchmark

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/gotick/internal/testutil"
	"github.com/vnykmshr/gotick/pkg/clock"
	"github.com/vnykmshr/gotick/pkg/cronplan"
	"github.com/vnykmshr/gotick/pkg/sched"
)

// BenchmarkPumpThroughput measures end-to-end execution rate with concurrent
// producers feeding zero-delay work into a single pumped scheduler.
func BenchmarkPumpThroughput(b *testing.B) {
	producerCounts := []int{1, 4, 8}

	for _, producers := range producerCounts {
		b.Run(producerLabel(producers), func(b *testing.B) {
			s, err := sched.NewWithConfig(sched.Config{
				Source: testutil.NewFakeSource(0),
				Jitter: testutil.NoJitter,
			})
			if err != nil {
				b.Fatalf("failed to create scheduler: %v", err)
			}

			var executed atomic.Int64
			fn := func() { executed.Add(1) }

			b.ReportAllocs()
			b.ResetTimer()

			var wg sync.WaitGroup
			per := b.N / producers
			extra := b.N % producers
			for p := 0; p < producers; p++ {
				n := per
				if p == 0 {
					n += extra
				}
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					for i := 0; i < n; i++ {
						s.Defer(nil, sched.Ident{}, fn)
					}
				}(n)
			}

			// The pump drains whatever each pass finds staged.
			for executed.Load() < int64(b.N) {
				s.Tick()
			}
			wg.Wait()
		})
	}
}

// BenchmarkIntervalCadence measures full pump passes over a fixed
// population of armed intervals, none of which are due. The serial strategy
// forces each pass to inspect the heap top instead of taking the idle
// shortcut.
func BenchmarkIntervalCadence(b *testing.B) {
	populations := []int{10, 100, 1000}

	for _, population := range populations {
		b.Run(sizeLabel(population), func(b *testing.B) {
			src := testutil.NewFakeSource(0)
			s, err := sched.NewWithConfig(sched.Config{
				Source:      src,
				Concurrency: clock.StrategySerial,
				Jitter:      testutil.NoJitter,
			})
			if err != nil {
				b.Fatalf("failed to create scheduler: %v", err)
			}

			for i := 0; i < population; i++ {
				s.SetInterval(nil, sched.NumericID(uint64(i)), time.Hour, func() {})
			}
			s.Tick()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				src.Advance(time.Millisecond)
				s.Tick()
			}
		})
	}
}

// BenchmarkCronPreview measures expression parsing plus activation
// computation through the planner.
func BenchmarkCronPreview(b *testing.B) {
	s, err := sched.NewWithConfig(sched.Config{
		Source: testutil.NewFakeSource(0),
		Jitter: testutil.NoJitter,
	})
	if err != nil {
		b.Fatalf("failed to create scheduler: %v", err)
	}
	p, err := cronplan.New(cronplan.Config{Scheduler: s})
	if err != nil {
		b.Fatalf("failed to create planner: %v", err)
	}

	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Preview("*/5 * * * *", from, 5); err != nil {
			b.Fatalf("preview failed: %v", err)
		}
	}
}

// producerLabel returns a readable label for producer counts.
func producerLabel(producers int) string {
	return strconv.Itoa(producers) + "producers"
}

// sizeLabel returns a readable label for population sizes.
func sizeLabel(size int) string {
	return strconv.Itoa(size)
}
