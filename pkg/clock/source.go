package clock

import "time"

// Source supplies fresh 32-bit millisecond readings from the underlying
// counter. Implementations must return a new sample on every call, never a
// cached one. The counter is assumed monotonic apart from wrapping to zero
// roughly every 49.7 days.
type Source interface {
	Millis() uint32
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func() uint32

// Millis returns f().
func (f SourceFunc) Millis() uint32 {
	return f()
}

// SystemSource derives readings from the process monotonic clock, wrapping
// at the 32-bit boundary like a hardware millisecond counter.
type SystemSource struct {
	start time.Time
}

// NewSystemSource creates a SystemSource anchored at the current time.
func NewSystemSource() *SystemSource {
	return &SystemSource{start: time.Now()}
}

// Millis returns milliseconds elapsed since construction, truncated to 32 bits.
func (s *SystemSource) Millis() uint32 {
	return uint32(time.Since(s.start).Milliseconds())
}
