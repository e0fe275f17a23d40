package database

import (
	"time"
)

// EventType distinguishes the two kinds of attendance events.
type EventType string

// Attendance event kinds. These values are persisted, do not change them.
const (
	EventCheckin  EventType = "checkin"
	EventCheckout EventType = "checkout"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	return t == EventCheckin || t == EventCheckout
}

// StoredIdentity represents an enrolled identity with its face embedding.
type StoredIdentity struct {
	ID        int64
	Name      string
	Embedding []float32
	CreatedAt time.Time
}

// Neighbor is an identity returned by a similarity search, closest first.
type Neighbor struct {
	Name       string
	Similarity float64 // 1 - cosine distance, in [-1, 1]
}

// AttendanceEvent is a single append-only ledger entry.
type AttendanceEvent struct {
	ID        int64
	UserName  string
	Type      EventType
	Time      time.Time
	Latitude  float64
	Longitude float64
}

// DailyAttendance summarizes one calendar day for one identity.
// Times are nil when no event of that type was recorded.
type DailyAttendance struct {
	Date         time.Time // midnight UTC of the day
	CheckinTime  *time.Time
	CheckoutTime *time.Time
}

// IdentitySummary is a dashboard row: an identity plus its most recent
// checkin and checkout timestamps (nil when the identity has none).
type IdentitySummary struct {
	ID             int64
	Name           string
	CreatedAt      time.Time
	LatestCheckin  *time.Time
	LatestCheckout *time.Time
}
