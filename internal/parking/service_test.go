package parking

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(slotCount, waitCapacity int) *Service {
	return NewService(slotCount, waitCapacity, 100, 50, zerolog.Nop())
}

var baseTime = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func TestEntryAssignsSmallestFreeSlot(t *testing.T) {
	svc := newTestService(3, 10)

	for i, wantSlot := range []SlotID{1, 2, 3} {
		res, err := svc.Entry(VehicleID(i), baseTime)
		require.NoError(t, err)
		assert.Equal(t, EntryParked, res.Outcome)
		assert.Equal(t, wantSlot, res.Slot)
	}

	// Freeing slot 2 makes it the next preferred slot, not slot 4.
	_, err := svc.Exit(1, baseTime.Add(time.Hour))
	require.NoError(t, err)

	res, err := svc.Entry(3, baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, SlotID(2), res.Slot)
}

func TestSlotUniqueness(t *testing.T) {
	svc := newTestService(5, 5)
	for i := 0; i < 5; i++ {
		_, err := svc.Entry(VehicleID(i), baseTime)
		require.NoError(t, err)
	}

	seen := make(map[SlotID]VehicleID)
	for _, st := range svc.SlotMap() {
		require.True(t, st.Occupied)
		_, dup := seen[st.Slot]
		require.False(t, dup, "slot %d occupied twice", st.Slot)
		seen[st.Slot] = st.Vehicle

		status, err := svc.Search(st.Vehicle)
		require.NoError(t, err)
		assert.Equal(t, StatusParked, status.Kind)
		assert.Equal(t, st.Slot, status.Slot)
	}
	assert.Len(t, seen, 5)
}

func TestWaitQueueFIFOAndPromotion(t *testing.T) {
	svc := newTestService(1, 2)

	res, err := svc.Entry(1, baseTime)
	require.NoError(t, err)
	assert.Equal(t, EntryParked, res.Outcome)
	assert.Equal(t, SlotID(1), res.Slot)

	res, err = svc.Entry(2, baseTime)
	require.NoError(t, err)
	assert.Equal(t, EntryQueued, res.Outcome)
	assert.Equal(t, 1, res.Position)

	res, err = svc.Entry(3, baseTime)
	require.NoError(t, err)
	assert.Equal(t, EntryQueued, res.Outcome)
	assert.Equal(t, 2, res.Position)

	_, err = svc.Entry(4, baseTime)
	assert.ErrorIs(t, err, ErrFacilityFull)

	exitTime := baseTime.Add(30 * time.Minute)
	exit, err := svc.Exit(1, exitTime)
	require.NoError(t, err)
	require.NotNil(t, exit.Promoted)
	assert.Equal(t, VehicleID(2), exit.Promoted.Vehicle)
	assert.Equal(t, SlotID(1), exit.Promoted.Slot)
	assert.Equal(t, exitTime, exit.Promoted.EntryTime)

	assert.Equal(t, []VehicleID{3}, svc.Waiting())

	status, err := svc.Search(2)
	require.NoError(t, err)
	assert.Equal(t, StatusParked, status.Kind)
}

func TestFeeComputation(t *testing.T) {
	svc := newTestService(3, 3)

	_, err := svc.Entry(1, baseTime)
	require.NoError(t, err)
	res, err := svc.Exit(1, baseTime.Add(3601*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.Fee, "just over one hour bills two")

	_, err = svc.Entry(2, baseTime)
	require.NoError(t, err)
	res, err = svc.Exit(2, baseTime.Add(3600*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(50), res.Fee, "exactly one hour bills one")

	assert.Equal(t, int64(150), svc.TotalRevenue())
}

func TestMonthlyPassHolderPaysNothing(t *testing.T) {
	svc := newTestService(3, 3)
	require.NoError(t, svc.RegisterMonthlyPass(1))

	_, err := svc.Entry(1, baseTime)
	require.NoError(t, err)
	res, err := svc.Exit(1, baseTime.Add(49*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(0), res.Fee)
	assert.Equal(t, int64(0), svc.TotalRevenue())
}

func TestClockSkewClampedToZero(t *testing.T) {
	svc := newTestService(3, 3)

	_, err := svc.Entry(1, baseTime)
	require.NoError(t, err)
	res, err := svc.Exit(1, baseTime.Add(-time.Hour))
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), res.Duration)
	assert.Equal(t, int64(0), res.Fee)
}

func TestVoluntaryWaitRemoval(t *testing.T) {
	svc := newTestService(1, 2)
	_, err := svc.Entry(1, baseTime)
	require.NoError(t, err)
	_, err = svc.Entry(2, baseTime)
	require.NoError(t, err)
	_, err = svc.Entry(3, baseTime)
	require.NoError(t, err)

	historyBefore := len(svc.History())

	res, err := svc.Exit(3, baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, ExitLeftQueue, res.Outcome)
	assert.Equal(t, int64(0), res.Fee)

	assert.Equal(t, []VehicleID{2}, svc.Waiting())
	assert.Equal(t, int64(0), svc.TotalRevenue())
	assert.Len(t, svc.History(), historyBefore, "no history record for a queued vehicle")

	status, err := svc.Search(3)
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, status.Kind)
}

func TestPassRegistrationIdempotent(t *testing.T) {
	svc := newTestService(3, 3)

	require.NoError(t, svc.RegisterMonthlyPass(5))
	require.NoError(t, svc.RegisterMonthlyPass(5))

	status, err := svc.Search(5)
	require.NoError(t, err)
	assert.True(t, status.MonthlyPass)
}

func TestEmergencyResetPreservesRevenueAndHistory(t *testing.T) {
	svc := newTestService(3, 3)

	_, err := svc.Entry(1, baseTime)
	require.NoError(t, err)
	_, err = svc.Exit(1, baseTime.Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.Entry(2, baseTime)
	require.NoError(t, err)

	revenue := svc.TotalRevenue()
	history := svc.History()
	require.NotZero(t, revenue)
	require.Len(t, history, 2)

	svc.EmergencyReset()

	assert.Len(t, svc.FreeSlots(), 3)
	assert.Empty(t, svc.Waiting())
	for _, st := range svc.SlotMap() {
		assert.False(t, st.Occupied)
	}
	status, err := svc.Search(2)
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, status.Kind)

	assert.Equal(t, revenue, svc.TotalRevenue())
	assert.Equal(t, history, svc.History())

	// Slots are reusable again, smallest first.
	res, err := svc.Entry(7, baseTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, SlotID(1), res.Slot)
}

func TestDuplicateEntryLeavesStateUntouched(t *testing.T) {
	svc := newTestService(3, 3)

	_, err := svc.Entry(1, baseTime)
	require.NoError(t, err)

	slotMap := svc.SlotMap()
	revenue := svc.TotalRevenue()
	history := svc.History()

	_, err = svc.Entry(1, baseTime.Add(time.Minute))
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	assert.Equal(t, slotMap, svc.SlotMap())
	assert.Equal(t, revenue, svc.TotalRevenue())
	assert.Equal(t, history, svc.History())
}

func TestDuplicateEntryWhileWaiting(t *testing.T) {
	svc := newTestService(1, 2)
	_, err := svc.Entry(1, baseTime)
	require.NoError(t, err)
	_, err = svc.Entry(2, baseTime)
	require.NoError(t, err)

	_, err = svc.Entry(2, baseTime)
	assert.ErrorIs(t, err, ErrDuplicateEntry)
	assert.Equal(t, []VehicleID{2}, svc.Waiting())
}

func TestInvalidVehicleID(t *testing.T) {
	svc := newTestService(3, 3)

	_, err := svc.Entry(-1, baseTime)
	assert.ErrorIs(t, err, ErrInvalidVehicleID)
	_, err = svc.Entry(100, baseTime)
	assert.ErrorIs(t, err, ErrInvalidVehicleID)
	_, err = svc.Exit(100, baseTime)
	assert.ErrorIs(t, err, ErrInvalidVehicleID)
	assert.ErrorIs(t, svc.RegisterMonthlyPass(100), ErrInvalidVehicleID)
	_, err = svc.Search(-1)
	assert.ErrorIs(t, err, ErrInvalidVehicleID)
}

func TestExitAbsentVehicle(t *testing.T) {
	svc := newTestService(3, 3)

	_, err := svc.Exit(1, baseTime)
	assert.ErrorIs(t, err, ErrNotParked)
}

func TestHistoryTracksFullCycle(t *testing.T) {
	svc := newTestService(2, 2)

	_, err := svc.Entry(1, baseTime)
	require.NoError(t, err)
	_, err = svc.Entry(2, baseTime.Add(time.Minute))
	require.NoError(t, err)

	records := svc.History()
	require.Len(t, records, 2)
	assert.Equal(t, VehicleID(2), records[0].Vehicle, "newest first")
	assert.Nil(t, records[0].ExitTime)

	exitTime := baseTime.Add(2 * time.Hour)
	_, err = svc.Exit(1, exitTime)
	require.NoError(t, err)

	records = svc.History()
	for _, r := range records {
		if r.Vehicle == 1 {
			require.NotNil(t, r.ExitTime)
			assert.True(t, r.ExitTime.Equal(exitTime))
		} else {
			assert.Nil(t, r.ExitTime)
		}
	}
}

func TestPromotionOpensHistoryRecord(t *testing.T) {
	svc := newTestService(1, 1)
	_, err := svc.Entry(1, baseTime)
	require.NoError(t, err)
	_, err = svc.Entry(2, baseTime)
	require.NoError(t, err)

	exitTime := baseTime.Add(time.Hour)
	_, err = svc.Exit(1, exitTime)
	require.NoError(t, err)

	records := svc.History()
	require.Len(t, records, 2)
	assert.Equal(t, VehicleID(2), records[0].Vehicle)
	assert.True(t, records[0].EntryTime.Equal(exitTime))
	assert.Nil(t, records[0].ExitTime)
}

func TestFreeSlotsDerivedFromOccupancy(t *testing.T) {
	svc := newTestService(4, 2)
	_, err := svc.Entry(1, baseTime)
	require.NoError(t, err)
	_, err = svc.Entry(2, baseTime)
	require.NoError(t, err)

	assert.Equal(t, []SlotID{3, 4}, svc.FreeSlots())

	_, err = svc.Exit(1, baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []SlotID{1, 3, 4}, svc.FreeSlots())
}
