package cmd

import (
	"errors"
	"fmt"

	"github.com/luckymoturi/AttendanceProject/internal/attendance"
	"github.com/luckymoturi/AttendanceProject/internal/config"
	"github.com/luckymoturi/AttendanceProject/internal/database/postgres"
	"github.com/luckymoturi/AttendanceProject/internal/faceid"
	"github.com/luckymoturi/AttendanceProject/internal/geofence"
)

// connectDatabase loads configuration, opens the PostgreSQL pool and applies
// pending migrations. The caller owns the pool and must Close it.
func connectDatabase() (*config.Config, *postgres.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	if cfg.Database.URL == "" {
		return nil, nil, errors.New("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	return cfg, pool, nil
}

// buildService wires the repositories, the embedding client and the geofence
// gate into an attendance service. The identity repository and embedding
// client are returned as well so callers can manage the HNSW index or embed
// photos directly.
func buildService(cfg *config.Config, pool *postgres.Pool) (*attendance.Service, *postgres.IdentityRepository, *faceid.Client) {
	identityRepo := postgres.NewIdentityRepository(pool)
	attendanceRepo := postgres.NewAttendanceRepository(pool)
	faces := faceid.NewClient(cfg.FaceID.URL, cfg.FaceID.Dim, cfg.FaceID.MaxImageSize)
	gate := geofence.NewGate(cfg.Geofence)

	svc := attendance.NewService(identityRepo, attendanceRepo, identityRepo, faces, gate, cfg.Match)
	return svc, identityRepo, faces
}
