package parking

import (
	"sort"
	"time"
)

type vehicleState struct {
	kind      StatusKind
	slot      SlotID
	entryTime time.Time
}

// Ledger is the single source of truth for per-vehicle and per-slot state,
// monthly-pass flags and cumulative revenue. It never touches the allocator
// or the queue; the service keeps the three consistent.
type Ledger struct {
	slotCount   int
	maxVehicles int

	vehicles map[VehicleID]vehicleState
	slots    map[SlotID]VehicleID
	passes   map[VehicleID]bool
	revenue  int64
}

// NewLedger creates an empty ledger for slots 1..slotCount and vehicle ids
// 0..maxVehicles-1.
func NewLedger(slotCount, maxVehicles int) *Ledger {
	return &Ledger{
		slotCount:   slotCount,
		maxVehicles: maxVehicles,
		vehicles:    make(map[VehicleID]vehicleState),
		slots:       make(map[SlotID]VehicleID),
		passes:      make(map[VehicleID]bool),
	}
}

// ValidVehicle reports whether v lies in the configured id range.
func (l *Ledger) ValidVehicle(v VehicleID) bool {
	return v >= 0 && int(v) < l.maxVehicles
}

// TryBeginEntry validates that v may enter: in range and currently absent.
func (l *Ledger) TryBeginEntry(v VehicleID) error {
	if !l.ValidVehicle(v) {
		return ErrInvalidVehicleID
	}
	if l.vehicles[v].kind != StatusAbsent {
		return ErrDuplicateEntry
	}
	return nil
}

// AssignSlot records v as parked in slot s since now.
func (l *Ledger) AssignSlot(v VehicleID, s SlotID, now time.Time) {
	l.vehicles[v] = vehicleState{kind: StatusParked, slot: s, entryTime: now}
	l.slots[s] = v
}

// MarkWaiting records v as waiting for a slot.
func (l *Ledger) MarkWaiting(v VehicleID) {
	l.vehicles[v] = vehicleState{kind: StatusWaiting}
}

// ClearVehicle resets v to absent, releasing its slot mapping if parked.
func (l *Ledger) ClearVehicle(v VehicleID) {
	if st := l.vehicles[v]; st.kind == StatusParked {
		delete(l.slots, st.slot)
	}
	delete(l.vehicles, v)
}

// RegisterPass flags v as a monthly-pass holder. Idempotent.
func (l *Ledger) RegisterPass(v VehicleID) error {
	if !l.ValidVehicle(v) {
		return ErrInvalidVehicleID
	}
	l.passes[v] = true
	return nil
}

// HasPass reports whether v holds a monthly pass.
func (l *Ledger) HasPass(v VehicleID) bool {
	return l.passes[v]
}

// StatusOf returns the tracked state of v.
func (l *Ledger) StatusOf(v VehicleID) (StatusKind, SlotID, time.Time) {
	st := l.vehicles[v]
	return st.kind, st.slot, st.entryTime
}

// OccupantOf returns the vehicle parked in slot s, if any.
func (l *Ledger) OccupantOf(s SlotID) (VehicleID, bool) {
	v, ok := l.slots[s]
	return v, ok
}

// OccupiedSlots returns the occupied slot ids in ascending order.
func (l *Ledger) OccupiedSlots() []SlotID {
	out := make([]SlotID, 0, len(l.slots))
	for s := range l.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FreeSlots returns the free slot ids in ascending order, derived as the
// complement of the occupied set within 1..slotCount.
func (l *Ledger) FreeSlots() []SlotID {
	out := make([]SlotID, 0, l.slotCount-len(l.slots))
	for s := 1; s <= l.slotCount; s++ {
		if _, occupied := l.slots[SlotID(s)]; !occupied {
			out = append(out, SlotID(s))
		}
	}
	return out
}

// AddRevenue accrues a collected fee. Revenue never decreases.
func (l *Ledger) AddRevenue(fee int64) {
	l.revenue += fee
}

// Revenue returns the cumulative collected fees.
func (l *Ledger) Revenue() int64 {
	return l.revenue
}

// Reset clears all vehicle and slot state. Pass registrations and revenue
// survive, matching the emergency-clear semantics.
func (l *Ledger) Reset() {
	l.vehicles = make(map[VehicleID]vehicleState)
	l.slots = make(map[SlotID]VehicleID)
}
