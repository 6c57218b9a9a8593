package parking

import "time"

// VehicleID identifies an entrant. Valid ids lie in [0, MaxVehicles).
type VehicleID int

// SlotID identifies a parking slot. Valid slots lie in [1, SlotCount].
type SlotID int

// StatusKind is the tracked state of a vehicle.
type StatusKind int

const (
	StatusAbsent StatusKind = iota
	StatusParked
	StatusWaiting
)

func (k StatusKind) String() string {
	switch k {
	case StatusParked:
		return "parked"
	case StatusWaiting:
		return "waiting"
	default:
		return "absent"
	}
}

// VehicleStatus is the answer to a vehicle search. Slot and EntryTime are
// meaningful only when Kind is StatusParked; Position (1-based) only when
// Kind is StatusWaiting.
type VehicleStatus struct {
	Vehicle     VehicleID
	Kind        StatusKind
	Slot        SlotID
	EntryTime   time.Time
	Position    int
	MonthlyPass bool
}

// SlotStatus is one row of the slot map.
type SlotStatus struct {
	Slot      SlotID
	Occupied  bool
	Vehicle   VehicleID
	EntryTime time.Time
}

// ParkedVehicle is one row of the parked-vehicles listing.
type ParkedVehicle struct {
	Slot      SlotID
	Vehicle   VehicleID
	EntryTime time.Time
}

// EntryOutcome discriminates the two successful Entry results.
type EntryOutcome int

const (
	EntryParked EntryOutcome = iota
	EntryQueued
)

// EntryResult reports a successful Entry. Slot and EntryTime are set when
// the vehicle was parked; Position when it was queued.
type EntryResult struct {
	Outcome   EntryOutcome
	Slot      SlotID
	EntryTime time.Time
	Position  int
}

// ExitOutcome discriminates the two successful Exit results.
type ExitOutcome int

const (
	// ExitCompleted: the vehicle left its slot and was billed.
	ExitCompleted ExitOutcome = iota
	// ExitLeftQueue: the vehicle left the waiting queue before being served.
	ExitLeftQueue
)

// Promotion reports a waiting vehicle that received the freed slot.
type Promotion struct {
	Vehicle   VehicleID
	Slot      SlotID
	EntryTime time.Time
}

// ExitResult reports a successful Exit. All fields other than Outcome are
// meaningful only for ExitCompleted; Promoted is nil when no waiting vehicle
// was assigned the freed slot.
type ExitResult struct {
	Outcome   ExitOutcome
	Slot      SlotID
	EntryTime time.Time
	ExitTime  time.Time
	Duration  time.Duration
	Fee       int64
	Promoted  *Promotion
}
