package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/luckymoturi/AttendanceProject/internal/database"
	"github.com/pgvector/pgvector-go"
)

// IdentityRepository provides PostgreSQL-backed identity storage with an
// optional in-memory HNSW index for similarity search.
type IdentityRepository struct {
	pool          *Pool
	hnswIndex     *database.HNSWIndex
	hnswEnabled   bool
	hnswIndexPath string // Path to persist HNSW index (optional)
	hnswMu        sync.RWMutex
}

// NewIdentityRepository creates a new PostgreSQL identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Upsert inserts or replaces the embedding for name.
func (r *IdentityRepository) Upsert(ctx context.Context, name string, embedding []float32) error {
	query := `
		INSERT INTO identities (name, embedding)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
		SET embedding = EXCLUDED.embedding
	`

	vec := pgvector.NewVector(embedding)
	if _, err := r.pool.Exec(ctx, query, name, vec); err != nil {
		return fmt.Errorf("upsert identity %s: %w", name, err)
	}

	r.hnswMu.RLock()
	hnswEnabled := r.hnswEnabled && r.hnswIndex != nil
	r.hnswMu.RUnlock()
	if hnswEnabled {
		identity, err := r.Get(ctx, name)
		if err == nil && identity != nil {
			_ = r.hnswIndex.Add(identity)
		}
	}
	return nil
}

// BulkUpsert applies multiple upserts in a single transaction, all-or-nothing.
func (r *IdentityRepository) BulkUpsert(ctx context.Context, identities []database.StoredIdentity) error {
	if len(identities) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO identities (name, embedding)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE
		SET embedding = EXCLUDED.embedding
	`
	for i := range identities {
		vec := pgvector.NewVector(identities[i].Embedding)
		if _, err := tx.ExecContext(ctx, query, identities[i].Name, vec); err != nil {
			return fmt.Errorf("upsert identity %s: %w", identities[i].Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk upsert: %w", err)
	}

	r.hnswMu.RLock()
	hnswEnabled := r.hnswEnabled && r.hnswIndex != nil
	r.hnswMu.RUnlock()
	if hnswEnabled {
		for i := range identities {
			_ = r.hnswIndex.Add(&identities[i])
		}
	}
	return nil
}

// Get retrieves an identity by name, returns nil if not found.
func (r *IdentityRepository) Get(ctx context.Context, name string) (*database.StoredIdentity, error) {
	query := `
		SELECT id, name, embedding, created_at
		FROM identities
		WHERE name = $1
	`

	var identity database.StoredIdentity
	var vec pgvector.Vector

	err := r.pool.QueryRow(ctx, query, name).Scan(
		&identity.ID,
		&identity.Name,
		&vec,
		&identity.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}

	identity.Embedding = vec.Slice()
	return &identity, nil
}

// NearestNeighbors finds identities above the similarity threshold, closest
// first. Uses the in-memory HNSW index if enabled, otherwise PostgreSQL.
func (r *IdentityRepository) NearestNeighbors(
	ctx context.Context, embedding []float32, threshold float64, limit int,
) ([]database.Neighbor, error) {
	r.hnswMu.RLock()
	hnswEnabled := r.hnswEnabled && r.hnswIndex != nil
	r.hnswMu.RUnlock()

	if hnswEnabled {
		return r.hnswIndex.Search(embedding, threshold, limit)
	}

	return r.nearestNeighborsPostgres(ctx, embedding, threshold, limit)
}

// nearestNeighborsPostgres uses pgvector's cosine distance operator with
// ef_search raised for better recall.
func (r *IdentityRepository) nearestNeighborsPostgres(
	ctx context.Context, embedding []float32, threshold float64, limit int,
) ([]database.Neighbor, error) {
	tx, err := r.pool.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", database.HNSWEfSearch)); err != nil {
		return nil, fmt.Errorf("set ef_search: %w", err)
	}

	query := `
		SELECT name, 1 - (embedding <=> $1::vector) AS similarity
		FROM identities
		WHERE 1 - (embedding <=> $1::vector) > $2
		ORDER BY embedding <=> $1::vector
		LIMIT $3
	`

	vec := pgvector.NewVector(embedding)
	rows, err := tx.QueryContext(ctx, query, vec, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("query nearest neighbors: %w", err)
	}
	defer rows.Close()

	var neighbors []database.Neighbor
	for rows.Next() {
		var n database.Neighbor
		if err := rows.Scan(&n.Name, &n.Similarity); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		neighbors = append(neighbors, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate neighbors: %w", err)
	}
	return neighbors, nil
}

// Delete removes the identity. Attendance events cascade at the schema level.
// Returns false when no such identity exists.
func (r *IdentityRepository) Delete(ctx context.Context, name string) (bool, error) {
	result, err := r.pool.Exec(ctx, "DELETE FROM identities WHERE name = $1", name)
	if err != nil {
		return false, fmt.Errorf("delete identity %s: %w", name, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete identity rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	r.hnswMu.RLock()
	hnswEnabled := r.hnswEnabled && r.hnswIndex != nil
	r.hnswMu.RUnlock()
	if hnswEnabled {
		r.hnswIndex.Delete(name)
	}
	return true, nil
}

// ListAll returns every identity with its latest checkin and checkout
// timestamps. Used for reporting views, not for matching.
func (r *IdentityRepository) ListAll(ctx context.Context) ([]database.IdentitySummary, error) {
	query := `
		SELECT
			i.id,
			i.name,
			i.created_at,
			(
				SELECT event_time FROM attendance
				WHERE user_name = i.name AND event_type = 'checkin'
				ORDER BY event_time DESC LIMIT 1
			) AS latest_checkin,
			(
				SELECT event_time FROM attendance
				WHERE user_name = i.name AND event_type = 'checkout'
				ORDER BY event_time DESC LIMIT 1
			) AS latest_checkout
		FROM identities i
		ORDER BY i.name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query identity summaries: %w", err)
	}
	defer rows.Close()

	var summaries []database.IdentitySummary
	for rows.Next() {
		var s database.IdentitySummary
		var checkin, checkout sql.NullTime
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &checkin, &checkout); err != nil {
			return nil, fmt.Errorf("scan identity summary: %w", err)
		}
		if checkin.Valid {
			s.LatestCheckin = &checkin.Time
		}
		if checkout.Valid {
			s.LatestCheckout = &checkout.Time
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identity summaries: %w", err)
	}
	return summaries, nil
}

// Count returns the number of enrolled identities.
func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM identities").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// ResetAll irreversibly clears all identities and attendance events.
// Callers must gate this behind an explicit confirmation.
func (r *IdentityRepository) ResetAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "TRUNCATE identities, attendance RESTART IDENTITY CASCADE"); err != nil {
		return fmt.Errorf("reset all: %w", err)
	}

	r.hnswMu.RLock()
	hnswEnabled := r.hnswEnabled && r.hnswIndex != nil
	r.hnswMu.RUnlock()
	if hnswEnabled {
		_ = r.hnswIndex.BuildFromIdentities(nil)
	}
	return nil
}

// listAllWithEmbeddings loads every identity including its embedding,
// used for building the HNSW index.
func (r *IdentityRepository) listAllWithEmbeddings(ctx context.Context) ([]database.StoredIdentity, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, name, embedding, created_at FROM identities")
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var identities []database.StoredIdentity
	for rows.Next() {
		var identity database.StoredIdentity
		var vec pgvector.Vector
		if err := rows.Scan(&identity.ID, &identity.Name, &vec, &identity.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identity.Embedding = vec.Slice()
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}

// EnableHNSW builds (or loads from indexPath) the in-memory HNSW index and
// switches similarity search to it. Postgres stays the source of truth: a
// loaded graph is reconciled against the identities table, and a corrupt
// index file just triggers a rebuild.
func (r *IdentityRepository) EnableHNSW(ctx context.Context, indexPath string) error {
	identities, err := r.listAllWithEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("load identities for HNSW: %w", err)
	}

	index := database.NewHNSWIndex()
	loaded := false
	if indexPath != "" {
		loaded, err = index.Load(indexPath)
		if err != nil {
			index = database.NewHNSWIndex()
			loaded = false
		}
	}

	if loaded {
		index.SyncFromIdentities(identities)
	} else if err := index.BuildFromIdentities(identities); err != nil {
		return fmt.Errorf("build HNSW index: %w", err)
	}
	index.SetPath(indexPath)

	r.hnswMu.Lock()
	r.hnswIndex = index
	r.hnswEnabled = true
	r.hnswIndexPath = indexPath
	r.hnswMu.Unlock()
	return nil
}

// HNSWCount returns the number of identities in the HNSW index.
func (r *IdentityRepository) HNSWCount() int {
	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()
	if r.hnswIndex == nil {
		return 0
	}
	return r.hnswIndex.Count()
}

// IsHNSWEnabled returns whether the in-memory index is active.
func (r *IdentityRepository) IsHNSWEnabled() bool {
	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()
	return r.hnswEnabled
}

// SaveHNSWIndex persists the index to disk if a path is configured.
func (r *IdentityRepository) SaveHNSWIndex() error {
	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()
	if r.hnswIndex == nil {
		return nil
	}
	return r.hnswIndex.Save()
}
