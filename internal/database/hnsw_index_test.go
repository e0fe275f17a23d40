package database

import (
	"math"
	"testing"
)

// unitVector returns a 128-dim unit vector pointing along the given axis.
func unitVector(axis int) []float32 {
	v := make([]float32, EmbeddingDim)
	v[axis%EmbeddingDim] = 1
	return v
}

func TestHNSWIndex_SearchReturnsEnrolledIdentityFirst(t *testing.T) {
	idx := NewHNSWIndex()
	identities := []StoredIdentity{
		{Name: "alice", Embedding: unitVector(0)},
		{Name: "bob", Embedding: unitVector(1)},
		{Name: "carol", Embedding: unitVector(2)},
	}
	if err := idx.BuildFromIdentities(identities); err != nil {
		t.Fatalf("BuildFromIdentities failed: %v", err)
	}

	neighbors, err := idx.Search(unitVector(0), DefaultMatchThreshold, DefaultMatchLimit)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(neighbors) != 1 {
		t.Fatalf("expected 1 neighbor above threshold, got %d", len(neighbors))
	}
	if neighbors[0].Name != "alice" {
		t.Errorf("expected 'alice', got %q", neighbors[0].Name)
	}
	if math.Abs(neighbors[0].Similarity-1.0) > 0.001 {
		t.Errorf("expected similarity ~1.0, got %v", neighbors[0].Similarity)
	}
}

func TestHNSWIndex_ThresholdFiltersDissimilar(t *testing.T) {
	idx := NewHNSWIndex()
	if err := idx.BuildFromIdentities([]StoredIdentity{
		{Name: "alice", Embedding: unitVector(0)},
	}); err != nil {
		t.Fatalf("BuildFromIdentities failed: %v", err)
	}

	// Orthogonal query: similarity 0, below any sensible threshold.
	neighbors, err := idx.Search(unitVector(5), DefaultMatchThreshold, DefaultMatchLimit)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("expected no neighbors above threshold, got %d", len(neighbors))
	}
}

func TestHNSWIndex_DeleteHidesIdentity(t *testing.T) {
	idx := NewHNSWIndex()
	if err := idx.BuildFromIdentities([]StoredIdentity{
		{Name: "alice", Embedding: unitVector(0)},
		{Name: "bob", Embedding: unitVector(1)},
	}); err != nil {
		t.Fatalf("BuildFromIdentities failed: %v", err)
	}

	idx.Delete("alice")

	neighbors, err := idx.Search(unitVector(0), 0.5, DefaultMatchLimit)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, n := range neighbors {
		if n.Name == "alice" {
			t.Error("deleted identity should not appear in search results")
		}
	}
	if idx.Count() != 1 {
		t.Errorf("expected count 1 after delete, got %d", idx.Count())
	}
}

func TestHNSWIndex_AddOverwrites(t *testing.T) {
	idx := NewHNSWIndex()
	if err := idx.Add(&StoredIdentity{Name: "alice", Embedding: unitVector(0)}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := idx.Add(&StoredIdentity{Name: "alice", Embedding: unitVector(1)}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if idx.Count() != 1 {
		t.Errorf("re-enrollment should not duplicate, count = %d", idx.Count())
	}

	neighbors, err := idx.Search(unitVector(1), DefaultMatchThreshold, DefaultMatchLimit)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0].Name != "alice" {
		t.Errorf("expected updated embedding to match, got %v", neighbors)
	}
}

func TestHNSWIndex_SaveLoadRoundtrip(t *testing.T) {
	identities := []StoredIdentity{
		{Name: "alice", Embedding: unitVector(0)},
		{Name: "bob", Embedding: unitVector(1)},
	}

	idx := NewHNSWIndex()
	if err := idx.BuildFromIdentities(identities); err != nil {
		t.Fatalf("BuildFromIdentities failed: %v", err)
	}

	path := t.TempDir() + "/identities.hnsw"
	idx.SetPath(path)
	if err := idx.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored := NewHNSWIndex()
	loaded, err := restored.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded {
		t.Fatal("expected index file to be loaded")
	}
	restored.SyncFromIdentities(identities)

	neighbors, err := restored.Search(unitVector(1), DefaultMatchThreshold, DefaultMatchLimit)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0].Name != "bob" {
		t.Errorf("expected 'bob' from restored index, got %v", neighbors)
	}
}

func TestHNSWIndex_LoadMissingFile(t *testing.T) {
	idx := NewHNSWIndex()
	loaded, err := idx.Load(t.TempDir() + "/missing.hnsw")
	if err != nil {
		t.Fatalf("Load of missing file should not error: %v", err)
	}
	if loaded {
		t.Error("expected loaded=false for missing file")
	}
}

func TestHNSWIndex_SearchEmpty(t *testing.T) {
	idx := NewHNSWIndex()

	neighbors, err := idx.Search(unitVector(0), DefaultMatchThreshold, DefaultMatchLimit)
	if err != nil {
		t.Fatalf("Search on empty index should not error: %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("expected no neighbors from empty index, got %d", len(neighbors))
	}
}

func TestHNSWIndex_EmptyDatabaseLifecycle(t *testing.T) {
	// A fresh deployment builds the index from zero identities; the first
	// enrollment's duplicate check must see an empty result, not an error.
	idx := NewHNSWIndex()
	if err := idx.BuildFromIdentities(nil); err != nil {
		t.Fatalf("BuildFromIdentities failed: %v", err)
	}

	neighbors, err := idx.Search(unitVector(0), DefaultMatchThreshold, DefaultMatchLimit)
	if err != nil {
		t.Fatalf("Search after empty build should not error: %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("expected no neighbors, got %d", len(neighbors))
	}

	if err := idx.Add(&StoredIdentity{Name: "alice", Embedding: unitVector(0)}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	neighbors, err = idx.Search(unitVector(0), DefaultMatchThreshold, DefaultMatchLimit)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0].Name != "alice" {
		t.Errorf("expected 'alice' after first enrollment, got %v", neighbors)
	}

	// Reset rebuilds with an empty set; search must stay usable.
	if err := idx.BuildFromIdentities(nil); err != nil {
		t.Fatalf("BuildFromIdentities after reset failed: %v", err)
	}
	neighbors, err = idx.Search(unitVector(0), DefaultMatchThreshold, DefaultMatchLimit)
	if err != nil {
		t.Fatalf("Search after reset should not error: %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("expected no neighbors after reset, got %d", len(neighbors))
	}
}
