package database

import (
	"context"
)

// IdentityStore persists one face embedding per named identity.
type IdentityStore interface {
	// Upsert inserts or replaces the embedding for name. Re-enrollment
	// overwrites; exactly one row per name afterwards.
	Upsert(ctx context.Context, name string, embedding []float32) error
	// BulkUpsert applies multiple upserts in a single transaction,
	// all-or-nothing.
	BulkUpsert(ctx context.Context, identities []StoredIdentity) error
	// Get retrieves an identity by name, returns nil if not found
	Get(ctx context.Context, name string) (*StoredIdentity, error)
	// NearestNeighbors returns up to limit identities whose cosine similarity
	// to the query embedding exceeds threshold, closest first. An empty
	// result is a normal outcome, not an error.
	NearestNeighbors(ctx context.Context, embedding []float32, threshold float64, limit int) ([]Neighbor, error)
	// Delete removes the identity and, via cascade, its attendance history.
	// Returns false when no such identity exists.
	Delete(ctx context.Context, name string) (bool, error)
	// ListAll returns every identity with its latest checkin/checkout timestamps.
	ListAll(ctx context.Context) ([]IdentitySummary, error)
	// Count returns the number of enrolled identities
	Count(ctx context.Context) (int, error)
}

// AttendanceLedger is the append-only log of check-in/check-out events.
type AttendanceLedger interface {
	// RecordEvent appends an event unless one of the same type already exists
	// for that identity on the current UTC day. Returns false (and no error)
	// when the day slot was already taken; the dedup is enforced by the
	// store so concurrent requests cannot double-log.
	RecordEvent(ctx context.Context, userName string, kind EventType, lat, lon float64) (bool, error)
	// HasEventToday reports whether an event of the given type exists for
	// the identity on the current UTC day.
	HasEventToday(ctx context.Context, userName string, kind EventType) (bool, error)
	// Events returns the raw event log for an identity, newest first.
	Events(ctx context.Context, userName string) ([]AttendanceEvent, error)
	// DailyReport groups an identity's events by UTC calendar day,
	// newest day first.
	DailyReport(ctx context.Context, userName string) ([]DailyAttendance, error)
}

// Resetter irreversibly clears all identities and attendance events.
// Destructive; every caller must gate it behind an explicit confirmation.
type Resetter interface {
	ResetAll(ctx context.Context) error
}
