package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	recorder := httptest.NewRecorder()

	HealthCheck(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%s'", result["status"])
	}
}

func TestSanitizeForLog(t *testing.T) {
	input := "alice\nINFO fake entry\r"
	if got := sanitizeForLog(input); got != "aliceINFO fake entry" {
		t.Errorf("sanitizeForLog = %q", got)
	}
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		min     float64
		max     float64
		wantErr bool
	}{
		{"valid latitude", "16.54", -90, 90, false},
		{"boundary", "90", -90, 90, false},
		{"out of range", "90.1", -90, 90, true},
		{"not a number", "north", -90, 90, true},
		{"empty", "", -90, 90, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCoordinate(tt.value, tt.min, tt.max)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseCoordinate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}
