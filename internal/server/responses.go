package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type VehicleRequest struct {
	Vehicle int `json:"vehicle"`
}

type EntryResponse struct {
	Outcome   string     `json:"outcome"`
	Slot      int        `json:"slot,omitempty"`
	EntryTime *time.Time `json:"entry_time,omitempty"`
	Position  int        `json:"position,omitempty"`
}

type PromotionResponse struct {
	Vehicle   int       `json:"vehicle"`
	Slot      int       `json:"slot"`
	EntryTime time.Time `json:"entry_time"`
}

type ExitResponse struct {
	Outcome         string             `json:"outcome"`
	Slot            int                `json:"slot,omitempty"`
	EntryTime       *time.Time         `json:"entry_time,omitempty"`
	ExitTime        *time.Time         `json:"exit_time,omitempty"`
	DurationSeconds int64              `json:"duration_seconds"`
	Fee             int64              `json:"fee"`
	Promoted        *PromotionResponse `json:"promoted,omitempty"`
}

type SlotStatusResponse struct {
	Slot      int        `json:"slot"`
	Occupied  bool       `json:"occupied"`
	Vehicle   *int       `json:"vehicle,omitempty"`
	EntryTime *time.Time `json:"entry_time,omitempty"`
}

type SlotMapResponse struct {
	Capacity  int                  `json:"capacity"`
	Occupied  int                  `json:"occupied"`
	Available int                  `json:"available"`
	Slots     []SlotStatusResponse `json:"slots"`
}

type VehicleStatusResponse struct {
	Vehicle     int        `json:"vehicle"`
	Status      string     `json:"status"`
	Slot        int        `json:"slot,omitempty"`
	EntryTime   *time.Time `json:"entry_time,omitempty"`
	Position    int        `json:"position,omitempty"`
	MonthlyPass bool       `json:"monthly_pass"`
}

type ParkedVehicleResponse struct {
	Slot      int       `json:"slot"`
	Vehicle   int       `json:"vehicle"`
	EntryTime time.Time `json:"entry_time"`
}

type WaitingResponse struct {
	Capacity int   `json:"capacity"`
	Count    int   `json:"count"`
	Vehicles []int `json:"vehicles"`
}

type RevenueResponse struct {
	TotalRevenue int64 `json:"total_revenue"`
}

type HistoryRecordResponse struct {
	ID        string     `json:"id"`
	Vehicle   int        `json:"vehicle"`
	Slot      int        `json:"slot"`
	EntryTime time.Time  `json:"entry_time"`
	ExitTime  *time.Time `json:"exit_time,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
