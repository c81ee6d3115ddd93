package store

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/coder/hnsw"
)

// VectorIndexConfig sets the HNSW graph parameters.
type VectorIndexConfig struct {
	// Dimensions is the required embedding length. Zero disables the
	// dimension check on the first Add and locks it in from the data.
	Dimensions int

	// M is the maximum connections per node.
	M int

	// EfSearch is the search expansion factor.
	EfSearch int
}

// VectorIndex is the HNSW-backed approximate-nearest-neighbor pre-filter
// over opportunity embeddings. The graph keys are internal uint64s with a
// string id mapping maintained beside it; deletions are lazy to keep the
// graph stable.
type VectorIndex struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[uint64]
	config VectorIndexConfig

	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64

	closed bool
}

// NewVectorIndex creates an in-memory ANN index over cosine distance.
func NewVectorIndex(cfg VectorIndexConfig) *VectorIndex {
	if cfg.M == 0 {
		cfg.M = 16
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 20
	}

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 0.25

	return &VectorIndex{
		graph:  graph,
		config: cfg,
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
	}
}

// Add inserts or replaces embeddings by id. Replacement is a lazy delete
// plus a fresh insert; the orphaned node stays in the graph but never
// resolves to an id.
func (v *VectorIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return fmt.Errorf("vector index is closed")
	}

	for _, vec := range vectors {
		if v.config.Dimensions == 0 {
			v.config.Dimensions = len(vec)
		}
		if len(vec) != v.config.Dimensions {
			return fmt.Errorf("embedding dimension mismatch: expected %d, got %d",
				v.config.Dimensions, len(vec))
		}
	}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if existingKey, exists := v.idMap[id]; exists {
			delete(v.keyMap, existingKey)
			delete(v.idMap, id)
		}

		key := v.nextKey
		v.nextKey++

		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		normalizeInPlace(vec)

		v.graph.Add(hnsw.MakeNode(key, vec))
		v.idMap[id] = key
		v.keyMap[key] = id
	}
	return nil
}

// Search returns up to k opportunity ids nearest the query embedding, in
// distance order.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.closed {
		return nil, fmt.Errorf("vector index is closed")
	}
	if len(query) == 0 || k <= 0 || v.graph.Len() == 0 {
		return nil, nil
	}
	if v.config.Dimensions != 0 && len(query) != v.config.Dimensions {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d",
			v.config.Dimensions, len(query))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	normalizeInPlace(normalized)

	nodes := v.graph.Search(normalized, k)
	ids := make([]string, 0, len(nodes))
	for _, node := range nodes {
		// Lazily deleted nodes have no id mapping anymore.
		if id, ok := v.keyMap[node.Key]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Delete removes ids from the index lazily.
func (v *VectorIndex) Delete(ids []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	for _, id := range ids {
		if key, ok := v.idMap[id]; ok {
			delete(v.keyMap, key)
			delete(v.idMap, id)
		}
	}
}

// Count returns the number of live vectors.
func (v *VectorIndex) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.idMap)
}

// Close marks the index closed. The graph is memory-only.
func (v *VectorIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}

// normalizeInPlace scales the vector to unit length so cosine distance
// depends only on direction.
func normalizeInPlace(vec []float32) {
	var sumSquares float64
	for _, val := range vec {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(sumSquares))
	for i := range vec {
		vec[i] *= norm
	}
}
