package handlers

import (
	"log"
	"net/http"

	"github.com/luckymoturi/AttendanceProject/internal/attendance"
)

// EnrollHandler handles face enrollment endpoints.
type EnrollHandler struct {
	service *attendance.Service
}

// NewEnrollHandler creates a new enrollment handler.
func NewEnrollHandler(svc *attendance.Service) *EnrollHandler {
	return &EnrollHandler{service: svc}
}

// Enroll registers a face photo under a name. Expects a multipart form with
// a "name" field and a "photo" file.
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	photo, err := readPhotoFile(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := r.FormValue("name")
	stored, err := h.service.Enroll(r.Context(), name, photo)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("enrolled identity %s", sanitizeForLog(stored))
	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "user enrolled successfully",
		"name":    stored,
	})
}
