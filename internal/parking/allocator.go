package parking

import "container/heap"

// slotHeap is a min-heap of free slot ids.
type slotHeap []SlotID

func (h slotHeap) Len() int           { return len(h) }
func (h slotHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h slotHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *slotHeap) Push(x any)        { *h = append(*h, x.(SlotID)) }

func (h *slotHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// SlotAllocator hands out the smallest-numbered free slot. Together with the
// ledger's occupied set it always accounts for exactly the slots 1..capacity.
type SlotAllocator struct {
	capacity int
	free     slotHeap
	isFree   map[SlotID]bool
}

// NewSlotAllocator creates an allocator with all slots 1..capacity free.
func NewSlotAllocator(capacity int) *SlotAllocator {
	a := &SlotAllocator{capacity: capacity}
	a.Reset()
	return a
}

// Acquire removes and returns the smallest free slot. The second return is
// false when no slot is free.
func (a *SlotAllocator) Acquire() (SlotID, bool) {
	if a.free.Len() == 0 {
		return 0, false
	}
	s := heap.Pop(&a.free).(SlotID)
	delete(a.isFree, s)
	return s, true
}

// Release returns a slot to the free pool. Releasing a slot that is already
// free is a caller bug; it is ignored so the free set can never hold
// duplicates.
func (a *SlotAllocator) Release(s SlotID) {
	if s < 1 || int(s) > a.capacity || a.isFree[s] {
		return
	}
	heap.Push(&a.free, s)
	a.isFree[s] = true
}

// FreeCount reports how many slots are currently free.
func (a *SlotAllocator) FreeCount() int {
	return a.free.Len()
}

// Reset marks every slot free again.
func (a *SlotAllocator) Reset() {
	a.free = a.free[:0]
	a.isFree = make(map[SlotID]bool, a.capacity)
	for s := 1; s <= a.capacity; s++ {
		a.free = append(a.free, SlotID(s))
		a.isFree[SlotID(s)] = true
	}
	heap.Init(&a.free)
}
