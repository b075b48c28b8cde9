package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/vnykmshr/gotick/internal/testutil"
	"github.com/vnykmshr/gotick/pkg/common/errors"
)

func TestTime(t *testing.T) {
	t.Run("compose and split", func(t *testing.T) {
		ts := Compose(3, 0xDEADBEEF)
		testutil.AssertEqual(t, ts.Epoch(), uint16(3))
		testutil.AssertEqual(t, ts.Raw(), uint32(0xDEADBEEF))
	})

	t.Run("ordered across epochs", func(t *testing.T) {
		before := Compose(0, 0xFFFFFFF0)
		after := Compose(1, 0x10)
		if after <= before {
			t.Errorf("time after rollover should order later: %x <= %x", after, before)
		}
	})

	t.Run("add crosses the raw boundary", func(t *testing.T) {
		ts := Compose(0, 0xFFFFFFFF).Add(time.Millisecond)
		testutil.AssertEqual(t, ts.Epoch(), uint16(1))
		testutil.AssertEqual(t, ts.Raw(), uint32(0))
	})

	t.Run("sub across epochs", func(t *testing.T) {
		d := Compose(1, 0x10).Sub(Compose(0, 0xFFFFFFF0))
		testutil.AssertEqual(t, d, 0x20*time.Millisecond)
	})

	t.Run("sub is negative for earlier minuend", func(t *testing.T) {
		d := Compose(0, 100).Sub(Compose(0, 500))
		testutil.AssertEqual(t, d, -400*time.Millisecond)
	})

	t.Run("negative add clamps at zero", func(t *testing.T) {
		testutil.AssertEqual(t, Compose(0, 5).Add(-10*time.Millisecond), Time(0))
	})
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name     string
		last     Time
		reading  uint32
		want     Time
		rollover bool
	}{
		{"same reading", Compose(0, 1000), 1000, Compose(0, 1000), false},
		{"forward", Compose(0, 1000), 2500, Compose(0, 2500), false},
		{"wrap just past half range", Compose(0, 0xFFFFFFF0), 0x10, Compose(1, 0x10), true},
		{"wrap from max to zero", Compose(2, 0xFFFFFFFF), 0, Compose(3, 0), true},
		{"small regression holds", Compose(0, 5000), 4000, Compose(0, 5000), false},
		{"regression of exactly half range holds", Compose(0, 1 << 31), 0, Compose(0, 1 << 31), false},
		{"epoch carries through forward step", Compose(7, 100), 200, Compose(7, 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rollover := advance(uint64(tt.last), tt.reading)
			testutil.AssertEqual(t, Time(got), tt.want)
			testutil.AssertEqual(t, rollover, tt.rollover)
		})
	}
}

func TestRollover(t *testing.T) {
	src := testutil.NewFakeSource(0xFFFFFFF0)
	c, err := New(Config{Source: src, Strategy: StrategySerial})
	testutil.AssertNoError(t, err)

	before := c.Now()
	src.Set(0x10)
	after := c.Now()

	if after <= before {
		t.Fatalf("logical time regressed across rollover: %x <= %x", after, before)
	}
	testutil.AssertEqual(t, after.Sub(before), 0x20*time.Millisecond)
	testutil.AssertEqual(t, after.Epoch(), uint16(1))
	testutil.AssertEqual(t, after.Raw(), uint32(0x10))
}

func TestStrategiesAgree(t *testing.T) {
	readings := []uint32{100, 50_000, 0xFFFF0000, 0x100, 0x80, 0x200}

	strategies := []Strategy{StrategySerial, StrategyMutex, StrategyAtomic}
	results := make([][]Time, len(strategies))

	for i, strategy := range strategies {
		src := testutil.NewFakeSource(0)
		c, err := New(Config{Source: src, Strategy: strategy})
		testutil.AssertNoError(t, err)

		for _, r := range readings {
			src.Set(r)
			results[i] = append(results[i], c.Now())
		}
	}

	for i := 1; i < len(results); i++ {
		for j := range readings {
			if results[i][j] != results[0][j] {
				t.Errorf("strategy %v diverged at reading %#x: got %x, want %x",
					strategies[i], readings[j], results[i][j], results[0][j])
			}
		}
	}
}

func TestAtomicConcurrent(t *testing.T) {
	src := testutil.NewFakeSource(0xFFFFF000)
	c, err := New(Config{Source: src, Strategy: StrategyAtomic})
	testutil.AssertNoError(t, err)

	const readers = 8
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last Time
			for {
				select {
				case <-stop:
					return
				default:
				}
				now := c.Now()
				if now < last {
					t.Errorf("logical time regressed: %x after %x", now, last)
					return
				}
				last = now
			}
		}()
	}

	// Walk the source through the rollover boundary while readers hammer Now.
	for i := 0; i < 8192; i++ {
		src.Advance(time.Millisecond)
	}
	close(stop)
	wg.Wait()

	final := c.Now()
	testutil.AssertEqual(t, final.Epoch(), uint16(1))
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"nil source", Config{}},
		{"unknown strategy", Config{Source: testutil.NewFakeSource(0), Strategy: Strategy(99)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			testutil.AssertError(t, err)
			if !errors.IsValidationError(err) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestSourceFunc(t *testing.T) {
	var calls int
	src := SourceFunc(func() uint32 {
		calls++
		return uint32(calls * 10)
	})

	testutil.AssertEqual(t, src.Millis(), uint32(10))
	testutil.AssertEqual(t, src.Millis(), uint32(20))
}

func TestNewSystem(t *testing.T) {
	c := NewSystem()

	a := c.Now()
	time.Sleep(2 * time.Millisecond)
	b := c.Now()

	if b < a {
		t.Errorf("system clock regressed: %x then %x", a, b)
	}
	testutil.AssertEqual(t, a.Epoch(), uint16(0))
}

func TestStrategyString(t *testing.T) {
	tests := []struct {
		strategy Strategy
		want     string
	}{
		{StrategyAtomic, "atomic"},
		{StrategySerial, "serial"},
		{StrategyMutex, "mutex"},
		{Strategy(42), "unknown"},
	}

	for _, tt := range tests {
		testutil.AssertEqual(t, tt.strategy.String(), tt.want)
	}
}
