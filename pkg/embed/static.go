package embed

import (
	"context"
	"fmt"
	"sync"
)

// Static implements [Embedder] with a fixed text→vector table.
// Intended for tests and offline experiments where deterministic
// embeddings matter more than semantics.
//
// It is safe for concurrent use.
type Static struct {
	mu      sync.RWMutex
	dim     int
	vectors map[string][]float32
}

var _ Embedder = (*Static)(nil)

// NewStatic creates a static embedder with the given dimensionality.
func NewStatic(dim int) *Static {
	return &Static{
		dim:     dim,
		vectors: make(map[string][]float32),
	}
}

// Set registers the vector returned for a text. The vector's length
// must equal the embedder dimension.
func (s *Static) Set(text string, vector []float32) error {
	if len(vector) != s.dim {
		return fmt.Errorf("vector for %q has %d dims, want %d: %w", text, len(vector), s.dim, ErrDimension)
	}
	cp := make([]float32, len(vector))
	copy(cp, vector)
	s.mu.Lock()
	s.vectors[text] = cp
	s.mu.Unlock()
	return nil
}

// MustSet registers a vector and panics on dimension mismatch.
// Convenient in test setup.
func (s *Static) MustSet(text string, vector []float32) {
	if err := s.Set(text, vector); err != nil {
		panic(err)
	}
}

// Embed returns the registered vector for the text. Unknown texts are
// an error, so a test fails loudly instead of searching with garbage.
func (s *Static) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("embed: no static vector for %q", text)
	}
	return v, nil
}

// EmbedBatch returns registered vectors aligned with the input texts.
func (s *Static) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimension returns the configured vector dimensionality.
func (s *Static) Dimension() int {
	return s.dim
}
