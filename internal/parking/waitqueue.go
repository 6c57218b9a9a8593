package parking

// WaitQueue is a bounded FIFO of vehicles waiting for a slot. A vehicle's
// position is implicit in the ordering; position 1 is served next.
type WaitQueue struct {
	capacity int
	items    []VehicleID
}

// NewWaitQueue creates an empty queue holding at most capacity vehicles.
func NewWaitQueue(capacity int) *WaitQueue {
	return &WaitQueue{
		capacity: capacity,
		items:    make([]VehicleID, 0, capacity),
	}
}

// Enqueue appends v at the back. Returns false when the queue is full.
func (q *WaitQueue) Enqueue(v VehicleID) bool {
	if len(q.items) >= q.capacity {
		return false
	}
	q.items = append(q.items, v)
	return true
}

// EnqueueFront puts v at the front of the queue, ahead of every waiting
// vehicle. Used to hand back a vehicle whose promotion could not complete,
// so it keeps its turn. Returns false when the queue is full.
func (q *WaitQueue) EnqueueFront(v VehicleID) bool {
	if len(q.items) >= q.capacity {
		return false
	}
	q.items = append([]VehicleID{v}, q.items...)
	return true
}

// DequeueFront removes and returns the longest-waiting vehicle. The second
// return is false when the queue is empty.
func (q *WaitQueue) DequeueFront() (VehicleID, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	v := q.items[0]
	q.items = q.items[1:]
	return v, true
}

// RemoveByID removes v wherever it sits, preserving the relative order of
// the remaining vehicles. Returns whether v was present.
func (q *WaitQueue) RemoveByID(v VehicleID) bool {
	for i, w := range q.items {
		if w == v {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Size reports how many vehicles are waiting; never exceeds Capacity.
func (q *WaitQueue) Size() int {
	return len(q.items)
}

// Capacity reports the maximum queue length.
func (q *WaitQueue) Capacity() int {
	return q.capacity
}

// Contents returns the waiting vehicles in FIFO order as a copy.
func (q *WaitQueue) Contents() []VehicleID {
	out := make([]VehicleID, len(q.items))
	copy(out, q.items)
	return out
}

// Reset empties the queue.
func (q *WaitQueue) Reset() {
	q.items = q.items[:0]
}
