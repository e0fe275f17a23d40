package database

// Embedding and matching parameters. The dimensionality is fixed system-wide;
// every stored vector has exactly this length.
const (
	// EmbeddingDim is the face embedding dimensionality.
	EmbeddingDim = 128

	// DefaultMatchThreshold is the minimum cosine similarity for an
	// accepted identity match.
	DefaultMatchThreshold = 0.9

	// DefaultMatchLimit is the candidate set size for nearest-neighbor queries.
	DefaultMatchLimit = 5
)

// HNSW index parameters for 128-dim face embeddings
const (
	// HNSWMaxNeighbors (M) is the maximum number of neighbors per node.
	// Higher values improve recall but increase memory and build time.
	HNSWMaxNeighbors = 16

	// HNSWEfSearch is the search candidate pool size.
	// Higher values improve recall but slow down search.
	HNSWEfSearch = 100
)
