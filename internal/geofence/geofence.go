// Package geofence decides whether a reported location falls inside one of
// the configured attendance zones.
package geofence

import (
	"math"

	"github.com/luckymoturi/AttendanceProject/internal/config"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

// Distance returns the great-circle distance between two points in meters.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := toRadians(lat2 - lat1)
	dlon := toRadians(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c * 1000
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Gate checks reported locations against a set of named allowed zones.
type Gate struct {
	zones []config.Zone
}

// NewGate creates a gate from the configured zones.
func NewGate(cfg config.GeofenceConfig) *Gate {
	return &Gate{zones: cfg.Zones}
}

// Contains reports whether the location is within the radius of any zone.
func (g *Gate) Contains(lat, lon float64) bool {
	for _, zone := range g.zones {
		if Distance(lat, lon, zone.Latitude, zone.Longitude) <= zone.RadiusMeters {
			return true
		}
	}
	return false
}

// ZoneCount returns the number of configured zones.
func (g *Gate) ZoneCount() int {
	return len(g.zones)
}
