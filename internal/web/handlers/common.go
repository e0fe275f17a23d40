package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/luckymoturi/AttendanceProject/internal/attendance"
	"github.com/luckymoturi/AttendanceProject/internal/faceid"
)

// maxUploadSize caps the size of multipart photo uploads (16 MB).
const maxUploadSize = 16 << 20

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps attendance service errors to HTTP responses.
// Business rejections become 4xx with their message; everything else is a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, attendance.ErrEmptyName):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, faceid.ErrNoFace):
		respondError(w, http.StatusBadRequest, "no face detected in the photo")
	case errors.Is(err, attendance.ErrDuplicateFace):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, attendance.ErrNotInGeofence):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, attendance.ErrFaceNotRecognized):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, attendance.ErrAlreadyCheckedIn), errors.Is(err, attendance.ErrAlreadyCheckedOut):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// readPhotoFile extracts the "photo" file from a multipart form.
func readPhotoFile(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, fmt.Errorf("failed to parse multipart form")
	}
	file, _, err := r.FormFile("photo")
	if err != nil {
		return nil, fmt.Errorf("photo file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read photo file")
	}
	return data, nil
}

// parseCoordinate parses a latitude or longitude form value within bounds.
func parseCoordinate(value string, min, max float64) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < min || f > max {
		return 0, fmt.Errorf("invalid coordinate %q", value)
	}
	return f, nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
