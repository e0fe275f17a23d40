package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luckymoturi/AttendanceProject/internal/database/mock"
)

func checkRequest(t *testing.T, path string, lat, lon float64) *http.Request {
	t.Helper()
	return multipartRequest(t, path, map[string]string{
		"latitude":  fmt.Sprintf("%f", lat),
		"longitude": fmt.Sprintf("%f", lon),
	}, []byte("fake image data"))
}

func enrolledStore(t *testing.T) *mock.Store {
	t.Helper()
	store := mock.NewStore()
	if err := store.Upsert(context.Background(), "alice", unitVector(0)); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	return store
}

func TestEventsHandler_CheckInSuccess(t *testing.T) {
	store := enrolledStore(t)
	handler := NewEventsHandler(newTestService(store, &stubFaces{embedding: unitVector(0)}))

	recorder := httptest.NewRecorder()
	handler.CheckIn(recorder, checkRequest(t, "/api/v1/checkin", testZoneLat, testZoneLon))

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["name"] != "alice" {
		t.Errorf("expected name 'alice', got '%v'", result["name"])
	}
	if similarity, ok := result["similarity"].(float64); !ok || similarity < 0.99 {
		t.Errorf("expected similarity ~1.0, got %v", result["similarity"])
	}
	if store.EventCount() != 1 {
		t.Errorf("expected 1 recorded event, got %d", store.EventCount())
	}
}

func TestEventsHandler_CheckInTwiceSameDay(t *testing.T) {
	store := enrolledStore(t)
	handler := NewEventsHandler(newTestService(store, &stubFaces{embedding: unitVector(0)}))

	recorder := httptest.NewRecorder()
	handler.CheckIn(recorder, checkRequest(t, "/api/v1/checkin", testZoneLat, testZoneLon))
	assertStatusCode(t, recorder, http.StatusOK)

	recorder = httptest.NewRecorder()
	handler.CheckIn(recorder, checkRequest(t, "/api/v1/checkin", testZoneLat, testZoneLon))
	assertStatusCode(t, recorder, http.StatusConflict)
	assertJSONError(t, recorder, "already checked in today")
}

func TestEventsHandler_CheckInOutsideGeofence(t *testing.T) {
	handler := NewEventsHandler(newTestService(enrolledStore(t), &stubFaces{embedding: unitVector(0)}))

	recorder := httptest.NewRecorder()
	handler.CheckIn(recorder, checkRequest(t, "/api/v1/checkin", 12.9715987, 77.5945627))

	assertStatusCode(t, recorder, http.StatusForbidden)
	assertJSONError(t, recorder, "not within the allowed area")
}

func TestEventsHandler_CheckInUnknownFace(t *testing.T) {
	// Store seeded with an orthogonal embedding, so the photo matches nobody.
	store := enrolledStore(t)
	handler := NewEventsHandler(newTestService(store, &stubFaces{embedding: unitVector(1)}))

	recorder := httptest.NewRecorder()
	handler.CheckIn(recorder, checkRequest(t, "/api/v1/checkin", testZoneLat, testZoneLon))

	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "face not recognized")
}

func TestEventsHandler_InvalidCoordinates(t *testing.T) {
	handler := NewEventsHandler(newTestService(enrolledStore(t), &stubFaces{embedding: unitVector(0)}))

	tests := []struct {
		name     string
		lat, lon string
	}{
		{"non-numeric latitude", "north", "81.49"},
		{"latitude out of range", "91.0", "81.49"},
		{"longitude out of range", "16.54", "181.0"},
		{"missing coordinates", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, "/api/v1/checkin", map[string]string{
				"latitude":  tt.lat,
				"longitude": tt.lon,
			}, []byte("fake image data"))
			recorder := httptest.NewRecorder()

			handler.CheckIn(recorder, req)

			assertStatusCode(t, recorder, http.StatusBadRequest)
		})
	}
}

func TestEventsHandler_CheckOutWithoutCheckIn(t *testing.T) {
	store := enrolledStore(t)
	handler := NewEventsHandler(newTestService(store, &stubFaces{embedding: unitVector(0)}))

	recorder := httptest.NewRecorder()
	handler.CheckOut(recorder, checkRequest(t, "/api/v1/checkout", testZoneLat, testZoneLon))
	assertStatusCode(t, recorder, http.StatusOK)

	recorder = httptest.NewRecorder()
	handler.CheckOut(recorder, checkRequest(t, "/api/v1/checkout", testZoneLat, testZoneLon))
	assertStatusCode(t, recorder, http.StatusConflict)
	assertJSONError(t, recorder, "already checked out today")
}
