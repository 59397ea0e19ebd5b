// Package vecdb defines the vector database contract used by the agent.
//
// The [Store] interface covers collection lifecycle, point upsert, and
// similarity search. Implementations include an in-memory brute-force
// store for testing ([NewMemory]) and the Qdrant HTTP client in the
// qdrant package for production use.
//
// This package follows the same pattern as a generic interface with
// pluggable backends: the agent is written against [Store] and never
// cares which backend is behind it.
package vecdb

import (
	"context"
	"errors"
	"fmt"
)

// Metric is the distance function used to rank vector similarity
// within a collection. It is fixed at collection creation time.
type Metric string

const (
	// MetricCosine ranks by cosine similarity.
	MetricCosine Metric = "cosine"

	// MetricDot ranks by dot product.
	MetricDot Metric = "dot"

	// MetricEuclid ranks by euclidean distance.
	MetricEuclid Metric = "euclid"
)

// ParseMetric parses a metric name. The empty string defaults to
// cosine. "euclidean" is accepted as an alias for euclid.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "", string(MetricCosine):
		return MetricCosine, nil
	case string(MetricDot):
		return MetricDot, nil
	case string(MetricEuclid), "euclidean":
		return MetricEuclid, nil
	default:
		return "", fmt.Errorf("vecdb: unknown metric %q (want cosine, dot, or euclid)", s)
	}
}

// CollectionInfo describes a collection: its name, the fixed vector
// dimension and metric, and the current number of stored points.
type CollectionInfo struct {
	Name      string `json:"name" yaml:"name"`
	Dimension int    `json:"dimension" yaml:"dimension"`
	Metric    Metric `json:"metric" yaml:"metric"`
	Points    uint64 `json:"points" yaml:"points"`
}

// Record is a stored vector point: an identifier, the embedding
// vector, and an optional payload of metadata fields.
type Record struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Match is a single result from a similarity search. Score is a
// similarity: higher is better regardless of the collection metric.
type Match struct {
	ID      string         `json:"id" yaml:"id"`
	Score   float32        `json:"score" yaml:"score"`
	Payload map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// SearchParams are the inputs for [Store.Search].
type SearchParams struct {
	// Vector is the query vector. Must match the collection dimension.
	Vector []float32

	// TopK is the maximum number of matches to return.
	TopK int

	// Filter restricts results to points whose payload matches.
	// Nil means no restriction.
	Filter *Filter

	// ScoreThreshold drops matches scoring below it. Nil disables.
	ScoreThreshold *float32
}

// Sentinel errors returned by Store implementations. Callers classify
// failures with errors.Is against these.
var (
	// ErrNotFound is returned when the named collection does not exist.
	ErrNotFound = errors.New("vecdb: collection not found")

	// ErrExists is returned when creating a collection whose name is taken.
	ErrExists = errors.New("vecdb: collection already exists")

	// ErrUnavailable is returned on transport or server failures.
	ErrUnavailable = errors.New("vecdb: backend unavailable")

	// ErrDimensionMismatch is returned when a vector's length disagrees
	// with the collection's declared dimension.
	ErrDimensionMismatch = errors.New("vecdb: vector dimension mismatch")
)

// Store is the interface to a vector database backend.
//
// All implementations must be safe for concurrent use. Every method
// honors context cancellation. Upsert is atomic per call: either all
// records in the call are committed or none are.
type Store interface {
	// CreateCollection creates a collection with a fixed dimension and
	// metric. Returns ErrExists if the name is taken.
	CreateCollection(ctx context.Context, name string, dimension int, metric Metric) error

	// ListCollections returns every collection and its metadata.
	ListCollections(ctx context.Context) ([]CollectionInfo, error)

	// GetCollection returns metadata for a single collection.
	// Returns ErrNotFound if it does not exist.
	GetCollection(ctx context.Context, name string) (*CollectionInfo, error)

	// DeleteCollection removes a collection and all its points.
	// Returns ErrNotFound if it does not exist.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert inserts or overwrites records by ID. Returns ErrNotFound
	// if the collection does not exist and ErrDimensionMismatch if any
	// vector's length differs from the collection dimension.
	Upsert(ctx context.Context, collection string, records []Record) error

	// Search returns up to TopK matches ranked best-first. The backend's
	// ranking order is authoritative. An empty result is not an error.
	Search(ctx context.Context, collection string, params SearchParams) ([]Match, error)
}
