package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed zones.yaml
var defaultZonesYAML []byte

type Config struct {
	Database DatabaseConfig
	FaceID   FaceIDConfig
	Match    MatchConfig
	Geofence GeofenceConfig
}

type DatabaseConfig struct {
	URL           string // PostgreSQL connection URL
	MaxOpenConns  int    // Maximum open connections (default 25)
	MaxIdleConns  int    // Maximum idle connections (default 5)
	HNSWIndexPath string // Path to persist the identity HNSW index (optional, rebuilt on startup if empty)
}

type FaceIDConfig struct {
	URL          string // face embedding service base URL (defaults to http://localhost:8000)
	Dim          int    // embedding dimensionality (defaults to 128)
	MaxImageSize int    // uploads larger than this edge length are downscaled before embedding (defaults to 1600)
}

type MatchConfig struct {
	Threshold float64 // minimum cosine similarity for an accepted identity match (defaults to 0.9)
	Limit     int     // candidate set size for nearest-neighbor queries (defaults to 5)
}

// GeofenceConfig holds the named zones a check-in location must fall inside.
type GeofenceConfig struct {
	Zones []Zone `yaml:"zones"`
}

// Zone is a circular geofence around a center point.
type Zone struct {
	Name         string  `yaml:"name"`
	Latitude     float64 `yaml:"latitude"`
	Longitude    float64 `yaml:"longitude"`
	RadiusMeters float64 `yaml:"radius_meters"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// loadZones reads the geofence configuration. When GEOFENCE_CONFIG points at a
// yaml file, that file wins; otherwise the embedded default zones are used.
func loadZones() (GeofenceConfig, error) {
	data := defaultZonesYAML
	if path := os.Getenv("GEOFENCE_CONFIG"); path != "" {
		fileData, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
		if err != nil {
			return GeofenceConfig{}, fmt.Errorf("read geofence config %s: %w", path, err)
		}
		data = fileData
	}

	var cfg GeofenceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GeofenceConfig{}, fmt.Errorf("parse geofence config: %w", err)
	}
	if len(cfg.Zones) == 0 {
		return GeofenceConfig{}, fmt.Errorf("geofence config contains no zones")
	}
	for _, z := range cfg.Zones {
		if z.RadiusMeters <= 0 {
			return GeofenceConfig{}, fmt.Errorf("zone %q has non-positive radius", z.Name)
		}
	}
	return cfg, nil
}

func Load() (*Config, error) {
	zones, err := loadZones()
	if err != nil {
		return nil, err
	}

	return &Config{
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			MaxOpenConns:  envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  envInt("DATABASE_MAX_IDLE_CONNS", 5),
			HNSWIndexPath: os.Getenv("HNSW_INDEX_PATH"),
		},
		FaceID: FaceIDConfig{
			URL:          os.Getenv("FACEID_URL"),
			Dim:          envInt("EMBEDDING_DIM", 128),
			MaxImageSize: envInt("FACEID_MAX_IMAGE_SIZE", 1600),
		},
		Match: MatchConfig{
			Threshold: envFloat("MATCH_THRESHOLD", 0.9),
			Limit:     envInt("MATCH_LIMIT", 5),
		},
		Geofence: zones,
	}, nil
}
