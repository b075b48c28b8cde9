package sched

// itemHeap is a binary min-heap ordered by next-execution time. Equal
// deadlines have no defined order; callers that need submission order for
// simultaneous work use the defer queue instead.
type itemHeap []*item

func (h itemHeap) Len() int {
	return len(h)
}

func (h itemHeap) Less(i, j int) bool {
	return h[i].runAt < h[j].runAt
}

func (h itemHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push adds an item. Use heap.Push, never call directly.
func (h *itemHeap) Push(x interface{}) {
	*h = append(*h, x.(*item))
}

// Pop removes the last item. Use heap.Pop, never call directly.
func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// peek returns the earliest item without removing it, or nil when empty.
func (h itemHeap) peek() *item {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

// freelist is a bounded pool of reclaimed items. Recycled items have their
// callback, owner, and identity cleared before they are kept, so the pool
// never retains closures or retry contexts. Once the freelist is full,
// further recycled items are dropped for the garbage collector.
type freelist struct {
	free []*item
	cap  int
}

func newFreelist(capacity int) freelist {
	return freelist{free: make([]*item, 0, capacity), cap: capacity}
}

// get returns a recycled item when one is available, or a fresh allocation.
// The second result reports whether the item came from the freelist.
func (f *freelist) get() (*item, bool) {
	if n := len(f.free); n > 0 {
		it := f.free[n-1]
		f.free[n-1] = nil
		f.free = f.free[:n-1]
		return it, true
	}
	return &item{}, false
}

// put keeps a cleared item for reuse unless the freelist is at capacity.
// It reports whether the item was kept.
func (f *freelist) put(it *item) bool {
	if len(f.free) >= f.cap {
		return false
	}
	f.free = append(f.free, it)
	return true
}

// size returns the number of items currently available for reuse.
func (f *freelist) size() int {
	return len(f.free)
}
