package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"smart-parking/internal/parking"
)

// Handler exposes the parking service over HTTP. The facility is sized at
// startup; handlers only invoke operations and translate results to JSON.
type Handler struct {
	service *parking.InstrumentedService
}

func NewHandler(service *parking.InstrumentedService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "smart-parking",
		"meta":    extractMeta(r.Context()),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, parking.ErrInvalidVehicleID):
		return http.StatusBadRequest
	case errors.Is(err, parking.ErrDuplicateEntry), errors.Is(err, parking.ErrFacilityFull):
		return http.StatusConflict
	case errors.Is(err, parking.ErrNotParked), errors.Is(err, parking.ErrNotInQueue):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func decodeVehicle(w http.ResponseWriter, r *http.Request) (parking.VehicleID, bool) {
	var req VehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(r.Context(), w, http.StatusBadRequest, "Invalid request body")
		return 0, false
	}
	return parking.VehicleID(req.Vehicle), true
}

func (h *Handler) Entry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vehicle, ok := decodeVehicle(w, r)
	if !ok {
		return
	}

	res, err := h.service.Entry(ctx, vehicle, time.Now())
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	if res.Outcome == parking.EntryParked {
		entry := res.EntryTime
		WriteSuccess(ctx, w, "Vehicle parked", EntryResponse{
			Outcome:   "parked",
			Slot:      int(res.Slot),
			EntryTime: &entry,
		})
		return
	}

	WriteSuccess(ctx, w, "Vehicle added to waiting queue", EntryResponse{
		Outcome:  "queued",
		Position: res.Position,
	})
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vehicle, ok := decodeVehicle(w, r)
	if !ok {
		return
	}

	res, err := h.service.Exit(ctx, vehicle, time.Now())
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	if res.Outcome == parking.ExitLeftQueue {
		WriteSuccess(ctx, w, "Vehicle removed from waiting queue", ExitResponse{
			Outcome: "left_queue",
		})
		return
	}

	entry, exit := res.EntryTime, res.ExitTime
	resp := ExitResponse{
		Outcome:         "exited",
		Slot:            int(res.Slot),
		EntryTime:       &entry,
		ExitTime:        &exit,
		DurationSeconds: int64(res.Duration / time.Second),
		Fee:             res.Fee,
	}
	if res.Promoted != nil {
		resp.Promoted = &PromotionResponse{
			Vehicle:   int(res.Promoted.Vehicle),
			Slot:      int(res.Promoted.Slot),
			EntryTime: res.Promoted.EntryTime,
		}
	}

	WriteSuccess(ctx, w, "Vehicle exited", resp)
}

func (h *Handler) RegisterPass(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vehicle, ok := decodeVehicle(w, r)
	if !ok {
		return
	}

	if err := h.service.RegisterMonthlyPass(ctx, vehicle); err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Monthly pass registered", map[string]any{
		"vehicle": int(vehicle),
	})
}

func (h *Handler) EmergencyReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.service.EmergencyReset(ctx)
	WriteSuccess(ctx, w, "Facility cleared, history retained", nil)
}

func (h *Handler) SlotMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	slotMap := h.service.SlotMap()
	occupied := 0
	slots := make([]SlotStatusResponse, 0, len(slotMap))
	for _, st := range slotMap {
		resp := SlotStatusResponse{Slot: int(st.Slot), Occupied: st.Occupied}
		if st.Occupied {
			occupied++
			v := int(st.Vehicle)
			entry := st.EntryTime
			resp.Vehicle = &v
			resp.EntryTime = &entry
		}
		slots = append(slots, resp)
	}

	WriteSuccess(ctx, w, "Slot map retrieved", SlotMapResponse{
		Capacity:  h.service.Capacity(),
		Occupied:  occupied,
		Available: h.service.Capacity() - occupied,
		Slots:     slots,
	})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.Atoi(chi.URLParam(r, "vehicle"))
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid vehicle id")
		return
	}

	st, err := h.service.Search(parking.VehicleID(id))
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	resp := VehicleStatusResponse{
		Vehicle:     int(st.Vehicle),
		Status:      st.Kind.String(),
		MonthlyPass: st.MonthlyPass,
	}
	switch st.Kind {
	case parking.StatusParked:
		entry := st.EntryTime
		resp.Slot = int(st.Slot)
		resp.EntryTime = &entry
	case parking.StatusWaiting:
		resp.Position = st.Position
	}

	WriteSuccess(ctx, w, "Vehicle status retrieved", resp)
}

func (h *Handler) Parked(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	parked := h.service.Parked()
	out := make([]ParkedVehicleResponse, 0, len(parked))
	for _, p := range parked {
		out = append(out, ParkedVehicleResponse{
			Slot:      int(p.Slot),
			Vehicle:   int(p.Vehicle),
			EntryTime: p.EntryTime,
		})
	}

	WriteSuccess(ctx, w, "Parked vehicles retrieved", out)
}

func (h *Handler) Waiting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	waiting := h.service.Waiting()
	vehicles := make([]int, 0, len(waiting))
	for _, v := range waiting {
		vehicles = append(vehicles, int(v))
	}

	WriteSuccess(ctx, w, "Waiting queue retrieved", WaitingResponse{
		Capacity: h.service.WaitCapacity(),
		Count:    len(vehicles),
		Vehicles: vehicles,
	})
}

func (h *Handler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	free := h.service.FreeSlots()
	slots := make([]int, 0, len(free))
	for _, s := range free {
		slots = append(slots, int(s))
	}

	WriteSuccess(ctx, w, "Free slots retrieved", map[string]any{
		"free_slots": slots,
	})
}

func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	WriteSuccess(ctx, w, "Revenue retrieved", RevenueResponse{
		TotalRevenue: h.service.TotalRevenue(),
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	records := h.service.History()
	out := make([]HistoryRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, HistoryRecordResponse{
			ID:        rec.ID,
			Vehicle:   int(rec.Vehicle),
			Slot:      int(rec.Slot),
			EntryTime: rec.EntryTime,
			ExitTime:  rec.ExitTime,
		})
	}

	WriteSuccess(ctx, w, "History retrieved", out)
}
