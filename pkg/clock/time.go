package clock

import "time"

const (
	rawMask   = 1<<32 - 1
	epochStep = 1 << 32
	timeMask  = 1<<48 - 1
	halfRange = 1 << 31
)

// Time is a 48-bit logical millisecond value. The low 32 bits hold the most
// recent raw counter reading; the high 16 bits hold the rollover epoch, the
// number of times the raw counter has wrapped since construction. Packing
// both into one word makes Time totally ordered under plain integer
// comparison, even across counter wraparound.
type Time uint64

// Compose builds a Time from an epoch and a raw counter reading.
func Compose(epoch uint16, raw uint32) Time {
	return Time(uint64(epoch)<<32 | uint64(raw))
}

// Raw returns the raw 32-bit counter reading component.
func (t Time) Raw() uint32 {
	return uint32(t)
}

// Epoch returns the rollover epoch component.
func (t Time) Epoch() uint16 {
	return uint16(t >> 32)
}

// Add returns t shifted by d, truncated to millisecond resolution.
func (t Time) Add(d time.Duration) Time {
	ms := d.Milliseconds()
	if ms < 0 {
		back := uint64(-ms)
		if back > uint64(t) {
			return 0
		}
		return t - Time(back)
	}
	return Time((uint64(t) + uint64(ms)) & timeMask)
}

// Sub returns the duration t-u. The result is negative when t is earlier.
func (t Time) Sub(u Time) time.Duration {
	return time.Duration(int64(t)-int64(u)) * time.Millisecond
}

// advance computes the logical value following last for a fresh raw reading
// and reports whether a rollover was crossed. A reading behind last by more
// than half the 32-bit range is a wrap; a smaller regression holds the last
// value so results never decrease.
func advance(last uint64, raw uint32) (uint64, bool) {
	lastRaw := uint32(last)
	switch {
	case raw >= lastRaw:
		return last&^uint64(rawMask) | uint64(raw), false
	case lastRaw-raw > halfRange:
		next := (last + epochStep) & timeMask
		return next&^uint64(rawMask) | uint64(raw), true
	default:
		return last, false
	}
}
