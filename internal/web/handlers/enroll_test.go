package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luckymoturi/AttendanceProject/internal/database/mock"
	"github.com/luckymoturi/AttendanceProject/internal/faceid"
)

func TestEnrollHandler_Success(t *testing.T) {
	store := mock.NewStore()
	handler := NewEnrollHandler(newTestService(store, &stubFaces{embedding: unitVector(0)}))

	req := multipartRequest(t, "/api/v1/enroll", map[string]string{"name": " Jiří  Novák "}, []byte("fake image data"))
	recorder := httptest.NewRecorder()

	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusCreated)

	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["name"] != "Jiri Novak" {
		t.Errorf("expected normalized name 'Jiri Novak', got '%s'", result["name"])
	}

	identity, _ := store.Get(context.Background(), "Jiri Novak")
	if identity == nil {
		t.Error("expected identity to be stored")
	}
}

func TestEnrollHandler_MissingPhoto(t *testing.T) {
	handler := NewEnrollHandler(newTestService(mock.NewStore(), &stubFaces{embedding: unitVector(0)}))

	req := multipartRequest(t, "/api/v1/enroll", map[string]string{"name": "alice"}, nil)
	recorder := httptest.NewRecorder()

	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "photo file is required")
}

func TestEnrollHandler_EmptyName(t *testing.T) {
	handler := NewEnrollHandler(newTestService(mock.NewStore(), &stubFaces{embedding: unitVector(0)}))

	req := multipartRequest(t, "/api/v1/enroll", map[string]string{"name": "   "}, []byte("fake image data"))
	recorder := httptest.NewRecorder()

	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "name cannot be empty")
}

func TestEnrollHandler_NoFace(t *testing.T) {
	handler := NewEnrollHandler(newTestService(mock.NewStore(), &stubFaces{err: faceid.ErrNoFace}))

	req := multipartRequest(t, "/api/v1/enroll", map[string]string{"name": "alice"}, []byte("landscape"))
	recorder := httptest.NewRecorder()

	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "no face detected in the photo")
}

func TestEnrollHandler_DuplicateFace(t *testing.T) {
	store := mock.NewStore()
	handler := NewEnrollHandler(newTestService(store, &stubFaces{embedding: unitVector(0)}))

	first := multipartRequest(t, "/api/v1/enroll", map[string]string{"name": "alice"}, []byte("fake image data"))
	recorder := httptest.NewRecorder()
	handler.Enroll(recorder, first)
	assertStatusCode(t, recorder, http.StatusCreated)

	// Same face under a different name.
	second := multipartRequest(t, "/api/v1/enroll", map[string]string{"name": "bob"}, []byte("fake image data"))
	recorder = httptest.NewRecorder()
	handler.Enroll(recorder, second)
	assertStatusCode(t, recorder, http.StatusConflict)
}

func TestEnrollHandler_InvalidMultipart(t *testing.T) {
	handler := NewEnrollHandler(newTestService(mock.NewStore(), &stubFaces{embedding: unitVector(0)}))

	req := httptest.NewRequest("POST", "/api/v1/enroll", bytes.NewBufferString("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	recorder := httptest.NewRecorder()

	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "failed to parse multipart form")
}
