package parking

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Service orchestrates the allocator, wait queue, ledger and history log.
// It is the single owner of all facility state; a RWMutex serializes the
// mutating operations and lets queries observe consistent snapshots.
type Service struct {
	mu sync.RWMutex

	slotCount    int
	waitCapacity int
	maxVehicles  int
	feePerHour   int64

	allocator *SlotAllocator
	queue     *WaitQueue
	ledger    *Ledger
	history   *HistoryLog
	logger    zerolog.Logger
}

// NewService builds a facility with all slots free and an empty queue.
func NewService(slotCount, waitCapacity, maxVehicles int, feePerHour int64, logger zerolog.Logger) *Service {
	return &Service{
		slotCount:    slotCount,
		waitCapacity: waitCapacity,
		maxVehicles:  maxVehicles,
		feePerHour:   feePerHour,
		allocator:    NewSlotAllocator(slotCount),
		queue:        NewWaitQueue(waitCapacity),
		ledger:       NewLedger(slotCount, maxVehicles),
		history:      NewHistoryLog(),
		logger:       logger,
	}
}

// Entry admits vehicle v at time now. The vehicle gets the smallest free
// slot, or a place at the back of the wait queue, or ErrFacilityFull when
// both are exhausted. Rejected entries leave all state untouched.
func (s *Service) Entry(v VehicleID, now time.Time) (EntryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.TryBeginEntry(v); err != nil {
		return EntryResult{}, err
	}

	slot, ok := s.allocator.Acquire()
	if !ok {
		if !s.queue.Enqueue(v) {
			return EntryResult{}, ErrFacilityFull
		}
		s.ledger.MarkWaiting(v)
		return EntryResult{Outcome: EntryQueued, Position: s.queue.Size()}, nil
	}

	s.ledger.AssignSlot(v, slot, now)
	s.history.Open(v, slot, now)
	return EntryResult{Outcome: EntryParked, Slot: slot, EntryTime: now}, nil
}

// Exit removes vehicle v at time now. A parked vehicle is billed and its
// slot is immediately offered to the front of the wait queue; a waiting
// vehicle is removed from the queue with no fee and no history record.
func (s *Service) Exit(v VehicleID, now time.Time) (ExitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.ValidVehicle(v) {
		return ExitResult{}, ErrInvalidVehicleID
	}

	kind, slot, entry := s.ledger.StatusOf(v)
	switch kind {
	case StatusAbsent:
		return ExitResult{}, ErrNotParked

	case StatusWaiting:
		if !s.queue.RemoveByID(v) {
			// Ledger says waiting but the queue disagrees. Reported, not
			// escalated; state is left as-is.
			s.logger.Warn().Int("vehicle", int(v)).
				Msg("ledger/queue desync: waiting vehicle missing from queue")
			return ExitResult{}, ErrNotInQueue
		}
		s.ledger.ClearVehicle(v)
		return ExitResult{Outcome: ExitLeftQueue}, nil
	}

	elapsed := now.Sub(entry)
	if elapsed < 0 {
		elapsed = 0
	}
	fee := s.computeFee(v, elapsed)
	s.ledger.AddRevenue(fee)

	if !s.history.Close(v, slot, now) {
		s.logger.Warn().Int("vehicle", int(v)).Int("slot", int(slot)).
			Msg("history desync: no open record to close")
	}

	s.ledger.ClearVehicle(v)
	s.allocator.Release(slot)

	res := ExitResult{
		Outcome:   ExitCompleted,
		Slot:      slot,
		EntryTime: entry,
		ExitTime:  now,
		Duration:  elapsed,
		Fee:       fee,
	}
	res.Promoted = s.promoteFront(now)
	return res, nil
}

// promoteFront hands the freed slot to the longest-waiting vehicle, if any.
// Must be called with the write lock held.
func (s *Service) promoteFront(now time.Time) *Promotion {
	next, ok := s.queue.DequeueFront()
	if !ok {
		return nil
	}
	slot, ok := s.allocator.Acquire()
	if !ok {
		// Cannot happen right after a release; keep the vehicle's turn by
		// putting it back at the front rather than the back.
		s.logger.Warn().Int("vehicle", int(next)).
			Msg("no free slot for promotion, re-queueing at front")
		s.queue.EnqueueFront(next)
		return nil
	}
	s.ledger.AssignSlot(next, slot, now)
	s.history.Open(next, slot, now)
	return &Promotion{Vehicle: next, Slot: slot, EntryTime: now}
}

func (s *Service) computeFee(v VehicleID, elapsed time.Duration) int64 {
	if s.ledger.HasPass(v) {
		return 0
	}
	secs := int64(elapsed / time.Second)
	billableHours := (secs + 3599) / 3600
	return billableHours * s.feePerHour
}

// RegisterMonthlyPass flags v as exempt from hourly fees. Idempotent.
func (s *Service) RegisterMonthlyPass(v VehicleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.RegisterPass(v)
}

// EmergencyReset clears every slot and the wait queue. Revenue and the
// history log survive so the audit trail outlives the clear.
func (s *Service) EmergencyReset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Reset()
	s.allocator.Reset()
	s.queue.Reset()
}

// SlotMap returns the occupancy of every slot 1..SlotCount in order.
func (s *Service) SlotMap() []SlotStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SlotStatus, 0, s.slotCount)
	for n := 1; n <= s.slotCount; n++ {
		st := SlotStatus{Slot: SlotID(n)}
		if v, ok := s.ledger.OccupantOf(SlotID(n)); ok {
			_, _, entry := s.ledger.StatusOf(v)
			st.Occupied = true
			st.Vehicle = v
			st.EntryTime = entry
		}
		out = append(out, st)
	}
	return out
}

// Search reports the status of vehicle v.
func (s *Service) Search(v VehicleID) (VehicleStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ledger.ValidVehicle(v) {
		return VehicleStatus{}, ErrInvalidVehicleID
	}
	kind, slot, entry := s.ledger.StatusOf(v)
	st := VehicleStatus{
		Vehicle:     v,
		Kind:        kind,
		MonthlyPass: s.ledger.HasPass(v),
	}
	switch kind {
	case StatusParked:
		st.Slot = slot
		st.EntryTime = entry
	case StatusWaiting:
		for i, w := range s.queue.Contents() {
			if w == v {
				st.Position = i + 1
				break
			}
		}
	}
	return st, nil
}

// Parked lists the occupied slots in ascending slot order.
func (s *Service) Parked() []ParkedVehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	occupied := s.ledger.OccupiedSlots()
	out := make([]ParkedVehicle, 0, len(occupied))
	for _, slot := range occupied {
		v, _ := s.ledger.OccupantOf(slot)
		_, _, entry := s.ledger.StatusOf(v)
		out = append(out, ParkedVehicle{Slot: slot, Vehicle: v, EntryTime: entry})
	}
	return out
}

// Waiting lists the queued vehicles in FIFO order.
func (s *Service) Waiting() []VehicleID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Contents()
}

// FreeSlots lists the free slots in ascending order.
func (s *Service) FreeSlots() []SlotID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.FreeSlots()
}

// TotalRevenue returns the cumulative collected fees.
func (s *Service) TotalRevenue() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Revenue()
}

// History returns every parking record, most recent first.
func (s *Service) History() []HistoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Records()
}

// Capacity returns the number of slots.
func (s *Service) Capacity() int {
	return s.slotCount
}

// WaitCapacity returns the maximum wait-queue length.
func (s *Service) WaitCapacity() int {
	return s.waitCapacity
}

// WaitingCount reports how many vehicles are queued.
func (s *Service) WaitingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Size()
}
