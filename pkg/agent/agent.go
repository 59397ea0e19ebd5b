// Package agent orchestrates a vector database: it manages
// collections, ingests documents (computing embeddings and upserting
// them in bounded batches), and answers free-text queries with
// nearest-neighbor search.
//
// An [Agent] is built once per process from a [vecdb.Store], an
// [embed.Embedder], and a fixed [Config]; it holds no other state and
// is safe for concurrent use. Operations can be called directly or
// routed through [Agent.Dispatch], which normalizes outputs and
// failures into a single reporting shape.
package agent

import (
	"context"
	"time"

	"github.com/vectl/vectl/pkg/embed"
	"github.com/vectl/vectl/pkg/vecdb"
)

// Defaults applied by New for zero Config fields.
const (
	// DefaultBatchSize is the maximum number of documents per
	// ingestion batch.
	DefaultBatchSize = 100

	// DefaultCallTimeout bounds each outbound embedding or backend
	// call. Timeouts are per call, not per operation, so one slow batch
	// does not abort a large ingest.
	DefaultCallTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries for transient
	// failures.
	DefaultMaxRetries = 3

	// DefaultTopK is the number of query results when the caller does
	// not ask for a specific count.
	DefaultTopK = 5

	// MaxTopK is the largest allowed top-k.
	MaxTopK = 100
)

// Config fixes the agent's operating parameters at construction time.
// Values are resolved externally (flags, config file, environment);
// the agent never reads ambient process state.
type Config struct {
	// EmbeddingDimension is the expected embedder output dimension.
	// Zero means trust the embedder's own Dimension().
	EmbeddingDimension int

	// BatchSize is the maximum documents per ingestion batch.
	BatchSize int

	// CallTimeout bounds each outbound call.
	CallTimeout time.Duration

	// MaxRetries is the retry count for retryable failures. Zero
	// means DefaultMaxRetries; a negative value disables retries
	// entirely (every call gets exactly one attempt).
	MaxRetries int
}

// Agent wires the embedding provider and the vector backend together.
type Agent struct {
	store    vecdb.Store
	embedder embed.Embedder
	cfg      Config
}

// New creates an agent. The config's embedding dimension, when set,
// must agree with the embedder's declared dimension: a disagreement
// here would put every ingested vector at odds with its collection.
func New(store vecdb.Store, embedder embed.Embedder, cfg Config) (*Agent, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	if dim := embedder.Dimension(); cfg.EmbeddingDimension != 0 && dim != 0 && cfg.EmbeddingDimension != dim {
		return nil, errorf("new", KindInvalidArgument,
			"configured embedding dimension %d disagrees with embedder dimension %d",
			cfg.EmbeddingDimension, dim)
	}
	if cfg.EmbeddingDimension == 0 {
		cfg.EmbeddingDimension = embedder.Dimension()
	}

	return &Agent{store: store, embedder: embedder, cfg: cfg}, nil
}

// callContext bounds a single outbound call.
func (a *Agent) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.CallTimeout)
}

// embedBatch runs one embedding call under the retry policy. Any
// provider failure is an embedding error; empty input is the caller's.
func (a *Agent) embedBatch(ctx context.Context, op string, texts []string) ([][]float32, error) {
	var vecs [][]float32
	err := a.withRetry(ctx, func(ctx context.Context) error {
		cctx, cancel := a.callContext(ctx)
		defer cancel()
		var err error
		vecs, err = a.embedder.EmbedBatch(cctx, texts)
		if err != nil {
			kind := KindEmbedding
			if k := kindOf(err); k == KindInvalidArgument || k == KindCanceled {
				kind = k
			}
			return &Error{Op: op, Kind: kind, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vecs, nil
}

// storeCall runs one backend call under the retry policy and
// classifies its failure.
func (a *Agent) storeCall(ctx context.Context, op string, f func(ctx context.Context) error) error {
	return a.withRetry(ctx, func(ctx context.Context) error {
		cctx, cancel := a.callContext(ctx)
		defer cancel()
		if err := f(cctx); err != nil {
			return classify(op, err)
		}
		return nil
	})
}
