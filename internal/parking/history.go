package parking

import (
	"time"

	"github.com/google/uuid"
)

// HistoryRecord is one audit entry spanning a vehicle's occupancy of a slot.
// ExitTime is nil while the vehicle is still parked and is set exactly once.
type HistoryRecord struct {
	ID        string
	Vehicle   VehicleID
	Slot      SlotID
	EntryTime time.Time
	ExitTime  *time.Time
}

// HistoryLog is the append-only record of every parking event. Records are
// never deleted; an emergency clear leaves the log intact.
type HistoryLog struct {
	records []HistoryRecord
}

// NewHistoryLog creates an empty log.
func NewHistoryLog() *HistoryLog {
	return &HistoryLog{}
}

// Open appends a new open record for v occupying slot s since entry.
func (h *HistoryLog) Open(v VehicleID, s SlotID, entry time.Time) {
	h.records = append(h.records, HistoryRecord{
		ID:        uuid.New().String(),
		Vehicle:   v,
		Slot:      s,
		EntryTime: entry,
	})
}

// Close stamps the exit time on the most recent open record for (v, s).
// Returns false when no such record exists, which signals the log has
// drifted from the ledger.
func (h *HistoryLog) Close(v VehicleID, s SlotID, exit time.Time) bool {
	for i := len(h.records) - 1; i >= 0; i-- {
		r := &h.records[i]
		if r.Vehicle == v && r.Slot == s && r.ExitTime == nil {
			t := exit
			r.ExitTime = &t
			return true
		}
	}
	return false
}

// Records returns every record, most recent first, as a copy.
func (h *HistoryLog) Records() []HistoryRecord {
	out := make([]HistoryRecord, len(h.records))
	for i, r := range h.records {
		if r.ExitTime != nil {
			t := *r.ExitTime
			r.ExitTime = &t
		}
		out[len(h.records)-1-i] = r
	}
	return out
}

// Len reports the number of records.
func (h *HistoryLog) Len() int {
	return len(h.records)
}
