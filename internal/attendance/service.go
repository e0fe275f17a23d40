package attendance

import (
	"context"
	"fmt"

	"github.com/luckymoturi/AttendanceProject/internal/config"
	"github.com/luckymoturi/AttendanceProject/internal/database"
	"github.com/luckymoturi/AttendanceProject/internal/geofence"
)

// EmbeddingProvider turns a photo into a face embedding. Implemented by
// faceid.Client; returns faceid.ErrNoFace when the photo contains no face.
type EmbeddingProvider interface {
	FirstFaceEmbedding(ctx context.Context, image []byte) ([]float32, error)
}

// CheckResult identifies who was recognized during a check-in/out.
type CheckResult struct {
	Name       string
	Similarity float64
}

// Service wires the geofence gate, the embedding provider and the stores
// into the enrollment and attendance flows.
type Service struct {
	identities database.IdentityStore
	ledger     database.AttendanceLedger
	resetter   database.Resetter
	matcher    *Matcher
	faces      EmbeddingProvider
	gate       *geofence.Gate
}

func NewService(
	identities database.IdentityStore,
	ledger database.AttendanceLedger,
	resetter database.Resetter,
	faces EmbeddingProvider,
	gate *geofence.Gate,
	match config.MatchConfig,
) *Service {
	return &Service{
		identities: identities,
		ledger:     ledger,
		resetter:   resetter,
		matcher:    NewMatcher(identities, match.Threshold, match.Limit),
		faces:      faces,
		gate:       gate,
	}
}

// Enroll registers a face under the given name and returns the normalized
// name it was stored as. Re-enrolling the same name overwrites the stored
// embedding; a face that already matches a different name is rejected with
// ErrDuplicateFace.
func (s *Service) Enroll(ctx context.Context, name string, image []byte) (string, error) {
	name = NormalizeName(name)
	if name == "" {
		return "", ErrEmptyName
	}

	embedding, err := s.faces.FirstFaceEmbedding(ctx, image)
	if err != nil {
		return "", err
	}

	neighbors, err := s.matcher.store.NearestNeighbors(ctx, embedding, s.matcher.threshold, s.matcher.limit)
	if err != nil {
		return "", fmt.Errorf("duplicate face check: %w", err)
	}
	for _, n := range neighbors {
		if n.Name != name {
			return "", fmt.Errorf("%w: matches %q (similarity %.3f)", ErrDuplicateFace, n.Name, n.Similarity)
		}
	}

	if err := s.identities.Upsert(ctx, name, embedding); err != nil {
		return "", fmt.Errorf("store identity %q: %w", name, err)
	}
	return name, nil
}

// EnrollBatch stores many identities in a single transaction without the
// duplicate-face check. Used by bulk enrollment where the operator vouches
// for the input set.
func (s *Service) EnrollBatch(ctx context.Context, identities []database.StoredIdentity) error {
	for i := range identities {
		identities[i].Name = NormalizeName(identities[i].Name)
		if identities[i].Name == "" {
			return ErrEmptyName
		}
	}
	if err := s.identities.BulkUpsert(ctx, identities); err != nil {
		return fmt.Errorf("bulk store identities: %w", err)
	}
	return nil
}

// CheckIn records a checkin for whoever is in the photo, provided the
// location falls inside a geofence zone and no checkin exists today.
func (s *Service) CheckIn(ctx context.Context, image []byte, lat, lon float64) (*CheckResult, error) {
	return s.record(ctx, database.EventCheckin, image, lat, lon)
}

// CheckOut records a checkout. A checkout does not require a prior checkin;
// only a second checkout on the same day is rejected.
func (s *Service) CheckOut(ctx context.Context, image []byte, lat, lon float64) (*CheckResult, error) {
	return s.record(ctx, database.EventCheckout, image, lat, lon)
}

func (s *Service) record(ctx context.Context, kind database.EventType, image []byte, lat, lon float64) (*CheckResult, error) {
	if !s.gate.Contains(lat, lon) {
		return nil, ErrNotInGeofence
	}

	embedding, err := s.faces.FirstFaceEmbedding(ctx, image)
	if err != nil {
		return nil, err
	}

	name, similarity, err := s.matcher.Match(ctx, embedding)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrFaceNotRecognized
	}

	// Friendly pre-check; the unique day slot in the ledger is the
	// authoritative guard under concurrency.
	taken, err := s.ledger.HasEventToday(ctx, name, kind)
	if err != nil {
		return nil, fmt.Errorf("check today's events for %q: %w", name, err)
	}
	if taken {
		return nil, alreadyRecorded(kind)
	}

	inserted, err := s.ledger.RecordEvent(ctx, name, kind, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("record %s for %q: %w", kind, name, err)
	}
	if !inserted {
		return nil, alreadyRecorded(kind)
	}

	return &CheckResult{Name: name, Similarity: similarity}, nil
}

func alreadyRecorded(kind database.EventType) error {
	if kind == database.EventCheckout {
		return ErrAlreadyCheckedOut
	}
	return ErrAlreadyCheckedIn
}

// Identities lists every enrolled identity with latest event timestamps.
func (s *Service) Identities(ctx context.Context) ([]database.IdentitySummary, error) {
	return s.identities.ListAll(ctx)
}

// Delete removes an identity and its attendance history. Returns false
// when the identity does not exist.
func (s *Service) Delete(ctx context.Context, name string) (bool, error) {
	return s.identities.Delete(ctx, NormalizeName(name))
}

// Events returns the raw attendance log for an identity, newest first.
func (s *Service) Events(ctx context.Context, name string) ([]database.AttendanceEvent, error) {
	return s.ledger.Events(ctx, NormalizeName(name))
}

// Report returns an identity's attendance grouped by UTC day, newest first.
func (s *Service) Report(ctx context.Context, name string) ([]database.DailyAttendance, error) {
	return s.ledger.DailyReport(ctx, NormalizeName(name))
}

// Reset wipes all identities and attendance events. Callers gate this
// behind explicit confirmation.
func (s *Service) Reset(ctx context.Context) error {
	return s.resetter.ResetAll(ctx)
}
