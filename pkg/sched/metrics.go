package sched

import (
	"time"

	"github.com/vnykmshr/gotick/pkg/metrics"
)

// instruments routes scheduler events to a metrics registry. A nil
// *instruments disables instrumentation; every method is safe to call on
// the nil receiver so call sites stay unconditional.
type instruments struct {
	reg  *metrics.Registry
	name string
}

func newInstruments(reg *metrics.Registry, name string) *instruments {
	return &instruments{reg: reg, name: name}
}

func (m *instruments) scheduled(kind Kind) {
	if m == nil {
		return
	}
	m.reg.ItemsScheduled.WithLabelValues(m.name, kind.String()).Inc()
}

func (m *instruments) executed(kind Kind) {
	if m == nil {
		return
	}
	m.reg.ItemsExecuted.WithLabelValues(m.name, kind.String()).Inc()
}

func (m *instruments) cancelled(kind Kind) {
	if m == nil {
		return
	}
	m.reg.ItemsCancelled.WithLabelValues(m.name, kind.String()).Inc()
}

func (m *instruments) skipped() {
	if m == nil {
		return
	}
	m.reg.ItemsSkipped.WithLabelValues(m.name).Inc()
}

func (m *instruments) reaped() {
	if m == nil {
		return
	}
	m.reg.ItemsReaped.WithLabelValues(m.name).Inc()
}

func (m *instruments) retryAttempt() {
	if m == nil {
		return
	}
	m.reg.RetryAttempts.WithLabelValues(m.name).Inc()
}

func (m *instruments) retryExhausted() {
	if m == nil {
		return
	}
	m.reg.RetryExhausted.WithLabelValues(m.name).Inc()
}

func (m *instruments) compaction() {
	if m == nil {
		return
	}
	m.reg.Compactions.WithLabelValues(m.name).Inc()
}

func (m *instruments) poolReused() {
	if m == nil {
		return
	}
	m.reg.PoolReused.WithLabelValues(m.name).Inc()
}

func (m *instruments) poolDropped() {
	if m == nil {
		return
	}
	m.reg.PoolDropped.WithLabelValues(m.name).Inc()
}

func (m *instruments) rollovers(n uint16) {
	if m == nil {
		return
	}
	m.reg.ClockRollovers.WithLabelValues(m.name).Add(float64(n))
}

func (m *instruments) tick(d time.Duration) {
	if m == nil {
		return
	}
	m.reg.TickDuration.WithLabelValues(m.name).Observe(d.Seconds())
}

func (m *instruments) pending(n int) {
	if m == nil {
		return
	}
	m.reg.PendingItems.WithLabelValues(m.name).Set(float64(n))
}
