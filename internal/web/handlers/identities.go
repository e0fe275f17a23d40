package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/luckymoturi/AttendanceProject/internal/attendance"
)

// resetConfirmPhrase must be sent verbatim to wipe all data.
const resetConfirmPhrase = "DELETE ALL"

// IdentitiesHandler handles identity management and reporting endpoints.
type IdentitiesHandler struct {
	service *attendance.Service
}

// NewIdentitiesHandler creates a new identities handler.
func NewIdentitiesHandler(svc *attendance.Service) *IdentitiesHandler {
	return &IdentitiesHandler{service: svc}
}

type identityResponse struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	CreatedAt      time.Time  `json:"created_at"`
	LatestCheckin  *time.Time `json:"latest_checkin"`
	LatestCheckout *time.Time `json:"latest_checkout"`
}

type eventResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Time      time.Time `json:"time"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

type reportDayResponse struct {
	Date         string     `json:"date"` // YYYY-MM-DD, UTC
	CheckinTime  *time.Time `json:"checkin_time"`
	CheckoutTime *time.Time `json:"checkout_time"`
}

// List returns every enrolled identity with latest event timestamps.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.Identities(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	identities := make([]identityResponse, 0, len(summaries))
	for _, s := range summaries {
		identities = append(identities, identityResponse{
			ID:             s.ID,
			Name:           s.Name,
			CreatedAt:      s.CreatedAt,
			LatestCheckin:  s.LatestCheckin,
			LatestCheckout: s.LatestCheckout,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"identities": identities,
		"count":      len(identities),
	})
}

// Delete removes an identity and its attendance history.
func (h *IdentitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	deleted, err := h.service.Delete(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "identity not found")
		return
	}

	log.Printf("deleted identity %s", sanitizeForLog(name))
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "identity deleted",
	})
}

// Events returns the raw attendance log for an identity, newest first.
func (h *IdentitiesHandler) Events(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	events, err := h.service.Events(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:        e.ID,
			Type:      string(e.Type),
			Time:      e.Time,
			Latitude:  e.Latitude,
			Longitude: e.Longitude,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"name":   attendance.NormalizeName(name),
		"events": out,
	})
}

// Report returns an identity's attendance grouped by UTC day, newest first.
func (h *IdentitiesHandler) Report(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	report, err := h.service.Report(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	days := make([]reportDayResponse, 0, len(report))
	for _, d := range report {
		days = append(days, reportDayResponse{
			Date:         d.Date.Format(time.DateOnly),
			CheckinTime:  d.CheckinTime,
			CheckoutTime: d.CheckoutTime,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"name": attendance.NormalizeName(name),
		"days": days,
	})
}

// Reset wipes all identities and attendance events. The request body must
// carry the exact confirmation phrase; anything else is rejected.
func (h *IdentitiesHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Confirm string `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if body.Confirm != resetConfirmPhrase {
		respondError(w, http.StatusBadRequest, `confirmation required: send {"confirm": "DELETE ALL"}`)
		return
	}

	if err := h.service.Reset(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Println("all identities and attendance events deleted")
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "all data deleted",
	})
}
