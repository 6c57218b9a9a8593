package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-parking/internal/logging"
	"smart-parking/internal/parking"
)

func newTestServer(t *testing.T, slotCount, waitCapacity int) *Server {
	t.Helper()
	logging.Init(false)

	telemetry, err := parking.NewTelemetryProvider()
	require.NoError(t, err)

	svc := parking.NewService(slotCount, waitCapacity, 100, 50, zerolog.Nop())
	service, err := parking.NewInstrumentedService(svc, telemetry)
	require.NoError(t, err)

	return NewServer("0", service)
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestEntryParksVehicle(t *testing.T) {
	srv := newTestServer(t, 3, 3)

	w := doRequest(srv, http.MethodPost, "/api/parking/entry", `{"vehicle": 1}`)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "parked", data["outcome"])
	assert.Equal(t, float64(1), data["slot"])
}

func TestEntryRejectsDuplicate(t *testing.T) {
	srv := newTestServer(t, 3, 3)

	doRequest(srv, http.MethodPost, "/api/parking/entry", `{"vehicle": 1}`)
	w := doRequest(srv, http.MethodPost, "/api/parking/entry", `{"vehicle": 1}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, decodeResponse(t, w).Success)
}

func TestEntryRejectsInvalidVehicle(t *testing.T) {
	srv := newTestServer(t, 3, 3)

	w := doRequest(srv, http.MethodPost, "/api/parking/entry", `{"vehicle": 500}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(srv, http.MethodPost, "/api/parking/entry", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEntryQueuesWhenFullAndExitPromotes(t *testing.T) {
	srv := newTestServer(t, 1, 2)

	doRequest(srv, http.MethodPost, "/api/parking/entry", `{"vehicle": 1}`)

	w := doRequest(srv, http.MethodPost, "/api/parking/entry", `{"vehicle": 2}`)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "queued", data["outcome"])
	assert.Equal(t, float64(1), data["position"])

	doRequest(srv, http.MethodPost, "/api/parking/entry", `{"vehicle": 3}`)

	w = doRequest(srv, http.MethodPost, "/api/parking/entry", `{"vehicle": 4}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(srv, http.MethodPost, "/api/parking/exit", `{"vehicle": 1}`)
	assert.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)
	data = resp.Data.(map[string]any)
	assert.Equal(t, "exited", data["outcome"])

	promoted := data["promoted"].(map[string]any)
	assert.Equal(t, float64(2), promoted["vehicle"])
	assert.Equal(t, float64(1), promoted["slot"])

	w = doRequest(srv, http.MethodGet, "/api/parking/waiting", "")
	resp = decodeResponse(t, w)
	waiting := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), waiting["count"])
}

func TestExitAbsentVehicleNotFound(t *testing.T) {
	srv := newTestServer(t, 3, 3)

	w := doRequest(srv, http.MethodPost, "/api/parking/exit", `{"vehicle": 9}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchAndSlotMap(t *testing.T) {
	srv := newTestServer(t, 2, 2)
	doRequest(srv, http.MethodPost, "/api/parking/entry", `{"vehicle": 7}`)

	w := doRequest(srv, http.MethodGet, "/api/parking/vehicles/7", "")
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "parked", data["status"])
	assert.Equal(t, float64(1), data["slot"])

	w = doRequest(srv, http.MethodGet, "/api/parking/vehicles/8", "")
	data = decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "absent", data["status"])

	w = doRequest(srv, http.MethodGet, "/api/parking/slots", "")
	slotMap := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, float64(2), slotMap["capacity"])
	assert.Equal(t, float64(1), slotMap["occupied"])
	assert.Equal(t, float64(1), slotMap["available"])
}

func TestPassRevenueAndReset(t *testing.T) {
	srv := newTestServer(t, 2, 2)

	w := doRequest(srv, http.MethodPost, "/api/parking/pass", `{"vehicle": 1}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(srv, http.MethodPost, "/api/parking/pass", `{"vehicle": 1}`)
	assert.Equal(t, http.StatusOK, w.Code, "pass registration is idempotent")

	doRequest(srv, http.MethodPost, "/api/parking/entry", `{"vehicle": 1}`)
	doRequest(srv, http.MethodPost, "/api/parking/exit", `{"vehicle": 1}`)

	w = doRequest(srv, http.MethodGet, "/api/parking/revenue", "")
	revenue := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, float64(0), revenue["total_revenue"], "pass holder pays nothing")

	doRequest(srv, http.MethodPost, "/api/parking/entry", `{"vehicle": 2}`)
	w = doRequest(srv, http.MethodPost, "/api/parking/reset", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(srv, http.MethodGet, "/api/parking/slots/free", "")
	free := decodeResponse(t, w).Data.(map[string]any)
	assert.Len(t, free["free_slots"], 2)

	// History survives the reset.
	w = doRequest(srv, http.MethodGet, "/api/parking/history", "")
	records := decodeResponse(t, w).Data.([]any)
	assert.Len(t, records, 2)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, 1, 1)

	w := doRequest(srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}
