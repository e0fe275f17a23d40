package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/luckymoturi/AttendanceProject/internal/attendance"
)

// EventsHandler handles check-in and check-out endpoints.
type EventsHandler struct {
	service *attendance.Service
}

// NewEventsHandler creates a new attendance events handler.
func NewEventsHandler(svc *attendance.Service) *EventsHandler {
	return &EventsHandler{service: svc}
}

// CheckIn records a checkin for the person in the photo. Expects a multipart
// form with a "photo" file and "latitude"/"longitude" fields.
func (h *EventsHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, "checked in", h.service.CheckIn)
}

// CheckOut records a checkout for the person in the photo.
func (h *EventsHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, "checked out", h.service.CheckOut)
}

func (h *EventsHandler) record(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	fn func(ctx context.Context, image []byte, lat, lon float64) (*attendance.CheckResult, error),
) {
	photo, err := readPhotoFile(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	lat, err := parseCoordinate(r.FormValue("latitude"), -90, 90)
	if err != nil {
		respondError(w, http.StatusBadRequest, "latitude must be a number between -90 and 90")
		return
	}
	lon, err := parseCoordinate(r.FormValue("longitude"), -180, 180)
	if err != nil {
		respondError(w, http.StatusBadRequest, "longitude must be a number between -180 and 180")
		return
	}

	result, err := fn(r.Context(), photo, lat, lon)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("%s %s (similarity %.3f)", sanitizeForLog(result.Name), action, result.Similarity)
	respondJSON(w, http.StatusOK, map[string]any{
		"message":    result.Name + " " + action,
		"name":       result.Name,
		"similarity": result.Similarity,
	})
}
