package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
)

// llmEmbedder asks an LLM provider for embeddings
type llmEmbedder struct {
	client    gollem.LLMClient
	model     string
	dimension int
}

var _ interfaces.Embedder = &llmEmbedder{}

// LLMOption configures an LLM-backed embedder
type LLMOption func(*llmEmbedder)

// WithDimension overrides model.EmbeddingDimension
func WithDimension(dim int) LLMOption {
	return func(e *llmEmbedder) {
		e.dimension = dim
	}
}

// NewLLM wraps client. modelName only labels the vectors for caching; the
// client decides which model actually serves the request.
func NewLLM(client gollem.LLMClient, modelName string, opts ...LLMOption) (interfaces.Embedder, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}

	e := &llmEmbedder{
		client:    client,
		model:     modelName,
		dimension: model.EmbeddingDimension,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *llmEmbedder) Model() string {
	return e.model
}

func (e *llmEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.client.GenerateEmbedding(ctx, e.dimension, []string{text})
	if err != nil {
		return nil, goerr.Wrap(model.ErrEmbedding, "embedding request failed",
			goerr.V("model", e.model), goerr.V("cause", err.Error()))
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, goerr.Wrap(model.ErrEmbedding, "embedding response is empty", goerr.V("model", e.model))
	}
	return vectors[0], nil
}
