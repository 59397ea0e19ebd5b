package vecdb

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Memory is an in-memory Store implementation using brute-force
// scoring. Intended for testing and small-scale use (< 1000 points
// per collection).
//
// It is safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	info   CollectionInfo
	points map[string]Record
}

// NewMemory creates a new in-memory vector store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]*memCollection),
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) CreateCollection(ctx context.Context, name string, dimension int, metric Metric) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dimension <= 0 {
		return fmt.Errorf("vecdb: dimension must be positive, got %d", dimension)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; ok {
		return fmt.Errorf("collection %q: %w", name, ErrExists)
	}
	m.collections[name] = &memCollection{
		info:   CollectionInfo{Name: name, Dimension: dimension, Metric: metric},
		points: make(map[string]Record),
	}
	return nil
}

func (m *Memory) ListCollections(ctx context.Context) ([]CollectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]CollectionInfo, 0, len(m.collections))
	for _, c := range m.collections {
		info := c.info
		info.Points = uint64(len(c.points))
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (m *Memory) GetCollection(ctx context.Context, name string) (*CollectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", name, ErrNotFound)
	}
	info := c.info
	info.Points = uint64(len(c.points))
	return &info, nil
}

func (m *Memory) DeleteCollection(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		return fmt.Errorf("collection %q: %w", name, ErrNotFound)
	}
	delete(m.collections, name)
	return nil
}

// Upsert is atomic: vectors are validated against the collection
// dimension before any record is committed.
func (m *Memory) Upsert(ctx context.Context, collection string, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collections[collection]
	if !ok {
		return fmt.Errorf("collection %q: %w", collection, ErrNotFound)
	}
	for _, r := range records {
		if len(r.Vector) != c.info.Dimension {
			return fmt.Errorf("record %q has dimension %d, collection %q wants %d: %w",
				r.ID, len(r.Vector), collection, c.info.Dimension, ErrDimensionMismatch)
		}
	}
	for _, r := range records {
		cp := Record{ID: r.ID, Vector: make([]float32, len(r.Vector))}
		copy(cp.Vector, r.Vector)
		if r.Payload != nil {
			cp.Payload = make(map[string]any, len(r.Payload))
			for k, v := range r.Payload {
				cp.Payload[k] = v
			}
		}
		c.points[r.ID] = cp
	}
	return nil
}

func (m *Memory) Search(ctx context.Context, collection string, params SearchParams) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", collection, ErrNotFound)
	}
	if len(params.Vector) != c.info.Dimension {
		return nil, fmt.Errorf("query has dimension %d, collection %q wants %d: %w",
			len(params.Vector), collection, c.info.Dimension, ErrDimensionMismatch)
	}
	if params.TopK <= 0 {
		return []Match{}, nil
	}

	matches := make([]Match, 0, len(c.points))
	for _, p := range c.points {
		if !params.Filter.Matches(p.Payload) {
			continue
		}
		score := similarity(c.info.Metric, params.Vector, p.Vector)
		if params.ScoreThreshold != nil && score < *params.ScoreThreshold {
			continue
		}
		// Copy the payload out so callers cannot mutate stored state,
		// mirroring the copy-in done by Upsert.
		var payload map[string]any
		if p.Payload != nil {
			payload = make(map[string]any, len(p.Payload))
			for k, v := range p.Payload {
				payload[k] = v
			}
		}
		matches = append(matches, Match{ID: p.ID, Score: score, Payload: payload})
	}

	// Best-first; equal scores break by ID so results are deterministic.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > params.TopK {
		matches = matches[:params.TopK]
	}
	return matches, nil
}

// similarity scores a candidate against the query under the given
// metric. Higher is always better: euclidean distance is negated.
func similarity(metric Metric, query, candidate []float32) float32 {
	switch metric {
	case MetricDot:
		var dot float64
		for i := range query {
			dot += float64(query[i]) * float64(candidate[i])
		}
		return float32(dot)
	case MetricEuclid:
		var sum float64
		for i := range query {
			d := float64(query[i]) - float64(candidate[i])
			sum += d * d
		}
		return float32(-math.Sqrt(sum))
	default: // cosine
		return CosineSimilarity(query, candidate)
	}
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value in [-1, 1] where 1 means identical direction.
// Returns -1 for mismatched lengths or zero-norm vectors.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return -1
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}

	if normA == 0 || normB == 0 {
		return -1 // zero vector has no direction
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to [-1, 1] to handle floating point errors.
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return float32(sim)
}
