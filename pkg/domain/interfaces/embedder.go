package interfaces

import "context"

// Embedder maps text to a fixed-dimension vector. The same text must always
// map to the same vector for a given model.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)

	// Model names the embedding model; vectors from different models are
	// never compared or cached together.
	Model() string
}

// EmbeddingCache stores vectors keyed by model and text
type EmbeddingCache interface {
	// Get returns the cached vector, or nil when absent
	Get(ctx context.Context, model, text string) ([]float64, error)
	Put(ctx context.Context, model, text string, vector []float64) error
}
