// Package mock provides in-memory implementations of database interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/luckymoturi/AttendanceProject/internal/database"
)

// Store is an in-memory implementation of database.IdentityStore,
// database.AttendanceLedger, and database.Resetter.
type Store struct {
	mu         sync.RWMutex
	identities map[string]*database.StoredIdentity
	events     []database.AttendanceEvent
	nextID     int64

	// Now is the clock used for event timestamps and "today" checks.
	// Defaults to time.Now when nil.
	Now func() time.Time

	// Error injection
	UpsertError      error
	BulkUpsertError  error
	GetError         error
	NeighborsError   error
	DeleteError      error
	ListAllError     error
	CountError       error
	RecordEventError error
	HasEventError    error
	EventsError      error
	ReportError      error
	ResetError       error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		identities: make(map[string]*database.StoredIdentity),
		nextID:     1,
	}
}

func (m *Store) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Upsert inserts or replaces the embedding for name.
func (m *Store) Upsert(ctx context.Context, name string, embedding []float32) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertLocked(name, embedding)
	return nil
}

func (m *Store) upsertLocked(name string, embedding []float32) {
	if existing, ok := m.identities[name]; ok {
		existing.Embedding = embedding
		return
	}
	m.identities[name] = &database.StoredIdentity{
		ID:        m.nextID,
		Name:      name,
		Embedding: embedding,
		CreatedAt: m.now(),
	}
	m.nextID++
}

// BulkUpsert applies multiple upserts atomically.
func (m *Store) BulkUpsert(ctx context.Context, identities []database.StoredIdentity) error {
	if m.BulkUpsertError != nil {
		return m.BulkUpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range identities {
		m.upsertLocked(identities[i].Name, identities[i].Embedding)
	}
	return nil
}

// Get retrieves an identity by name.
func (m *Store) Get(ctx context.Context, name string) (*database.StoredIdentity, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	identity, ok := m.identities[name]
	if !ok {
		return nil, nil
	}
	copied := *identity
	return &copied, nil
}

// NearestNeighbors performs a linear cosine-similarity scan.
func (m *Store) NearestNeighbors(ctx context.Context, embedding []float32, threshold float64, limit int) ([]database.Neighbor, error) {
	if m.NeighborsError != nil {
		return nil, m.NeighborsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var neighbors []database.Neighbor
	for _, identity := range m.identities {
		similarity := 1 - database.CosineDistance(embedding, identity.Embedding)
		if similarity > threshold {
			neighbors = append(neighbors, database.Neighbor{Name: identity.Name, Similarity: similarity})
		}
	}
	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].Similarity > neighbors[j].Similarity
	})
	if len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors, nil
}

// Delete removes an identity and cascades to its attendance events.
func (m *Store) Delete(ctx context.Context, name string) (bool, error) {
	if m.DeleteError != nil {
		return false, m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.identities[name]; !ok {
		return false, nil
	}
	delete(m.identities, name)

	kept := m.events[:0]
	for _, e := range m.events {
		if e.UserName != name {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return true, nil
}

// ListAll returns identity summaries with latest event timestamps.
func (m *Store) ListAll(ctx context.Context) ([]database.IdentitySummary, error) {
	if m.ListAllError != nil {
		return nil, m.ListAllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := make([]database.IdentitySummary, 0, len(m.identities))
	for _, identity := range m.identities {
		summary := database.IdentitySummary{
			ID:        identity.ID,
			Name:      identity.Name,
			CreatedAt: identity.CreatedAt,
		}
		for i := range m.events {
			e := m.events[i]
			if e.UserName != identity.Name {
				continue
			}
			t := e.Time
			switch e.Type {
			case database.EventCheckin:
				if summary.LatestCheckin == nil || t.After(*summary.LatestCheckin) {
					summary.LatestCheckin = &t
				}
			case database.EventCheckout:
				if summary.LatestCheckout == nil || t.After(*summary.LatestCheckout) {
					summary.LatestCheckout = &t
				}
			}
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// Count returns the number of enrolled identities.
func (m *Store) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.identities), nil
}

// RecordEvent appends an event unless the (user, type, day) slot is taken.
func (m *Store) RecordEvent(ctx context.Context, userName string, kind database.EventType, lat, lon float64) (bool, error) {
	if m.RecordEventError != nil {
		return false, m.RecordEventError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.hasEventOnDayLocked(userName, kind, now) {
		return false, nil
	}
	m.events = append(m.events, database.AttendanceEvent{
		ID:        m.nextID,
		UserName:  userName,
		Type:      kind,
		Time:      now,
		Latitude:  lat,
		Longitude: lon,
	})
	m.nextID++
	return true, nil
}

// HasEventToday reports whether an event of the given type exists today.
func (m *Store) HasEventToday(ctx context.Context, userName string, kind database.EventType) (bool, error) {
	if m.HasEventError != nil {
		return false, m.HasEventError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasEventOnDayLocked(userName, kind, m.now()), nil
}

func (m *Store) hasEventOnDayLocked(userName string, kind database.EventType, day time.Time) bool {
	y, mo, d := day.UTC().Date()
	for _, e := range m.events {
		if e.UserName != userName || e.Type != kind {
			continue
		}
		ey, emo, ed := e.Time.UTC().Date()
		if ey == y && emo == mo && ed == d {
			return true
		}
	}
	return false
}

// Events returns the raw event log for an identity, newest first.
func (m *Store) Events(ctx context.Context, userName string) ([]database.AttendanceEvent, error) {
	if m.EventsError != nil {
		return nil, m.EventsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var events []database.AttendanceEvent
	for _, e := range m.events {
		if e.UserName == userName {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Time.After(events[j].Time) })
	return events, nil
}

// DailyReport groups events by UTC day with MAX aggregation per type.
func (m *Store) DailyReport(ctx context.Context, userName string) ([]database.DailyAttendance, error) {
	if m.ReportError != nil {
		return nil, m.ReportError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	days := make(map[time.Time]*database.DailyAttendance)
	for _, e := range m.events {
		if e.UserName != userName {
			continue
		}
		y, mo, d := e.Time.UTC().Date()
		day := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
		entry, ok := days[day]
		if !ok {
			entry = &database.DailyAttendance{Date: day}
			days[day] = entry
		}
		t := e.Time
		switch e.Type {
		case database.EventCheckin:
			if entry.CheckinTime == nil || t.After(*entry.CheckinTime) {
				entry.CheckinTime = &t
			}
		case database.EventCheckout:
			if entry.CheckoutTime == nil || t.After(*entry.CheckoutTime) {
				entry.CheckoutTime = &t
			}
		}
	}

	report := make([]database.DailyAttendance, 0, len(days))
	for _, entry := range days {
		report = append(report, *entry)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Date.After(report[j].Date) })
	return report, nil
}

// ResetAll clears all identities and events.
func (m *Store) ResetAll(ctx context.Context) error {
	if m.ResetError != nil {
		return m.ResetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities = make(map[string]*database.StoredIdentity)
	m.events = nil
	return nil
}

// EventCount returns the number of stored events (test helper).
func (m *Store) EventCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
