// Package embed provides a text embedding interface and an OpenAI
// implementation.
//
// An Embedder converts text into dense vector representations
// (embeddings) with a fixed dimensionality, suitable for semantic
// search over a vector database.
//
// # Implementations
//
//   - [OpenAI] — OpenAI text-embedding-3-small / text-embedding-3-large,
//     or any OpenAI-compatible provider via WithBaseURL
//   - [Static] — a fixed text→vector table for tests and offline use
//
// # Quick Start
//
//	e := embed.NewOpenAI("sk-xxx", embed.WithModel("text-embedding-3-small"), embed.WithDimension(384))
//	vec, err := e.Embed(ctx, "hello world")
//
//	vecs, err := e.EmbedBatch(ctx, []string{"hello", "world"})
package embed

import (
	"context"
	"errors"
)

// Embedder converts text into dense float32 vectors.
//
// Implementations perform no retries: failures propagate to the
// caller, which owns the retry policy.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embedding vectors for multiple texts, aligned
	// by position with the input. Implementations may split large
	// batches into smaller API calls transparently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of the output vectors.
	Dimension() int
}

// Common errors.
var (
	// ErrEmptyInput is returned when the input text is empty.
	ErrEmptyInput = errors.New("embed: empty input")

	// ErrDimension is returned when the provider yields a vector whose
	// length disagrees with the declared model dimension.
	ErrDimension = errors.New("embed: provider returned wrong dimension")
)

func float64sToFloat32s(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
