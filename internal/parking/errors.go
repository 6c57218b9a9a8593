package parking

import "errors"

// Every rejection is locally recoverable: state is left untouched and the
// caller decides how to surface the condition.
var (
	ErrInvalidVehicleID = errors.New("vehicle id out of range")
	ErrDuplicateEntry   = errors.New("vehicle already parked or waiting")
	ErrFacilityFull     = errors.New("parking and waiting queue are full")
	ErrNotParked        = errors.New("vehicle not parked")
	ErrNotInQueue       = errors.New("vehicle not in waiting queue")
)
