package sched

import (
	"time"

	"github.com/vnykmshr/gotick/pkg/clock"
)

// Kind distinguishes one-shot timeouts from recurring intervals.
type Kind uint8

const (
	// Timeout items execute once and are reclaimed.
	Timeout Kind = iota

	// Interval items re-arm after each execution, anchored to the
	// scheduled fire time.
	Interval
)

// String returns the kind name for diagnostics and metric labels.
func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case Interval:
		return "interval"
	default:
		return "unknown"
	}
}

// Owner is the capability through which scheduled items observe the health
// of their owning component. The pump polls it immediately before running a
// due item; an owner reporting permanent failure causes the item to be
// skipped and reclaimed instead of executed. A nil owner is always
// runnable.
//
// Owners are compared by interface identity when matching items for
// replacement and cancellation, so register and cancel with the same handle
// and keep the dynamic type comparable.
type Owner interface {
	Failed() bool
}

// item is one scheduled unit of work. An item is owned by exactly one place
// at a time: the freelist, the staging buffer, the defer queue, the heap,
// or the pump's executing slot. Cancellation never moves an item, it only
// sets the deleted flag; reclamation happens on the pump.
type item struct {
	owner    Owner
	fn       func()
	ident    Ident
	runAt    clock.Time
	interval time.Duration
	rctx     *retryContext
	kind     Kind
	deleted  bool
	retry    bool
}

// matches reports whether the item is a live registration for the given
// owner, ident, kind, and retry marker.
func (it *item) matches(owner Owner, id Ident, kind Kind, retry bool) bool {
	return !it.deleted &&
		it.kind == kind &&
		it.retry == retry &&
		it.owner == owner &&
		it.ident.equal(id)
}
