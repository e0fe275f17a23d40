package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/luckymoturi/AttendanceProject/internal/attendance"
	"github.com/luckymoturi/AttendanceProject/internal/config"
	"github.com/luckymoturi/AttendanceProject/internal/database"
	"github.com/luckymoturi/AttendanceProject/internal/database/mock"
	"github.com/luckymoturi/AttendanceProject/internal/geofence"
)

const (
	testZoneLat = 16.5422428
	testZoneLon = 81.4968464
)

// stubFaces returns a canned embedding for every photo.
type stubFaces struct {
	embedding []float32
	err       error
}

func (f *stubFaces) FirstFaceEmbedding(ctx context.Context, image []byte) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

func unitVector(axis int) []float32 {
	v := make([]float32, database.EmbeddingDim)
	v[axis] = 1
	return v
}

// newTestService wires a service over the in-memory store with a single
// geofence zone around the test coordinates.
func newTestService(store *mock.Store, faces *stubFaces) *attendance.Service {
	gate := geofence.NewGate(config.GeofenceConfig{
		Zones: []config.Zone{
			{Name: "office", Latitude: testZoneLat, Longitude: testZoneLon, RadiusMeters: 100},
		},
	})
	return attendance.NewService(store, store, store, faces, gate, config.MatchConfig{Threshold: 0.9, Limit: 5})
}

// multipartRequest builds a multipart POST with the given form fields and,
// when photo is non-nil, a "photo" file part.
func multipartRequest(t *testing.T, path string, fields map[string]string, photo []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field %s: %v", key, err)
		}
	}
	if photo != nil {
		part, err := writer.CreateFormFile("photo", "photo.jpg")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		part.Write(photo)
	}
	writer.Close()

	req := httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
