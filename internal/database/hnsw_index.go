package database

import (
	"fmt"
	"os"
	"sync"

	"github.com/coder/hnsw"
)

// HNSWIndex wraps an in-memory HNSW graph over enrolled identity embeddings.
// Postgres remains the source of truth; the index is rebuilt or loaded on
// startup and kept in sync on enrollment and deletion.
type HNSWIndex struct {
	graph      *hnsw.Graph[string]
	identities map[string]*StoredIdentity
	mu         sync.RWMutex
	path       string // Path to save/load index
}

// NewHNSWIndex creates a new empty HNSW index.
func NewHNSWIndex() *HNSWIndex {
	return &HNSWIndex{
		identities: make(map[string]*StoredIdentity),
	}
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance
	return g
}

// BuildFromIdentities builds the index from a slice of identities.
func (h *HNSWIndex) BuildFromIdentities(identities []StoredIdentity) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(identities) == 0 {
		h.graph = nil
		h.identities = make(map[string]*StoredIdentity)
		return nil
	}

	g := newGraph()
	h.identities = make(map[string]*StoredIdentity, len(identities))

	for i := range identities {
		identity := &identities[i]
		if len(identity.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(identity.Name, identity.Embedding))
		h.identities[identity.Name] = identity
	}

	h.graph = g
	return nil
}

// SyncFromIdentities refreshes the index against the authoritative identity
// set after loading a persisted graph: the live map is rebuilt and any
// identity missing from the graph is inserted.
func (h *HNSWIndex) SyncFromIdentities(identities []StoredIdentity) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.graph == nil {
		h.graph = newGraph()
	}

	h.identities = make(map[string]*StoredIdentity, len(identities))
	for i := range identities {
		identity := &identities[i]
		if len(identity.Embedding) == 0 {
			continue
		}
		h.graph.Add(hnsw.MakeNode(identity.Name, identity.Embedding))
		h.identities[identity.Name] = identity
	}
}

// Search finds up to limit identities whose similarity to the query exceeds
// threshold, closest first. An empty index yields an empty result, not an
// error: nothing is enrolled yet. Entries removed via Delete are filtered
// out, and similarity is always computed against the live embedding, never a
// stale persisted node.
func (h *HNSWIndex) Search(query []float32, threshold float64, limit int) ([]Neighbor, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil {
		return nil, nil
	}

	nodes := h.graph.Search(query, limit)

	neighbors := make([]Neighbor, 0, len(nodes))
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		identity, ok := h.identities[n.Key]
		if !ok {
			continue // deleted
		}
		if seen[n.Key] {
			continue // stale node from a re-enrollment
		}
		similarity := 1 - CosineDistance(query, identity.Embedding)
		if similarity <= threshold {
			continue
		}
		seen[n.Key] = true
		neighbors = append(neighbors, Neighbor{Name: n.Key, Similarity: similarity})
	}
	return neighbors, nil
}

// Add inserts or replaces a single identity in the index.
func (h *HNSWIndex) Add(identity *StoredIdentity) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(identity.Embedding) == 0 {
		return nil
	}

	if h.graph == nil {
		h.graph = newGraph()
	}

	h.graph.Add(hnsw.MakeNode(identity.Name, identity.Embedding))
	h.identities[identity.Name] = identity
	return nil
}

// Delete removes an identity from the index (marks as deleted).
func (h *HNSWIndex) Delete(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.identities, name)
	// HNSW doesn't support true deletion; removing the map entry hides the
	// node from search results.
}

// SetPath sets the path for saving/loading the index.
func (h *HNSWIndex) SetPath(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.path = path
}

// Save persists the index to disk.
func (h *HNSWIndex) Save() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.path == "" {
		return nil // No path set
	}

	if h.graph == nil {
		// Remove existing file if index is empty (best-effort cleanup).
		_ = os.Remove(h.path)
		return nil
	}

	f, err := os.Create(h.path)
	if err != nil {
		return fmt.Errorf("failed to create HNSW index file: %w", err)
	}
	defer f.Close()

	if err := h.graph.Export(f); err != nil {
		return fmt.Errorf("exporting HNSW graph: %w", err)
	}
	return nil
}

// Load restores a persisted graph from disk. Returns false when no index
// file exists; the caller then builds from scratch. The identity map is NOT
// restored, callers must follow up with SyncFromIdentities.
func (h *HNSWIndex) Load(path string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.path = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil // No index file, will build from identities
	}

	saved, err := hnsw.LoadSavedGraph[string](path)
	if err != nil {
		return false, fmt.Errorf("failed to load HNSW index: %w", err)
	}

	// SavedGraph embeds *Graph, so the loaded graph serves directly.
	h.graph = saved.Graph
	return true, nil
}

// Count returns the number of indexed identities.
func (h *HNSWIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.identities)
}
