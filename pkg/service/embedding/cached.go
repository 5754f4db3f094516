package embedding

import (
	"context"

	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
)

type cachedEmbedder struct {
	inner interfaces.Embedder
	cache interfaces.EmbeddingCache
}

// WithCache serves repeated texts from cache. Cache failures are logged and
// fall through to the wrapped embedder; they never fail an Embed call.
func WithCache(inner interfaces.Embedder, cache interfaces.EmbeddingCache) interfaces.Embedder {
	if cache == nil {
		return inner
	}
	return &cachedEmbedder{inner: inner, cache: cache}
}

func (e *cachedEmbedder) Model() string {
	return e.inner.Model()
}

func (e *cachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	modelName := e.inner.Model()

	vector, err := e.cache.Get(ctx, modelName, text)
	if err != nil {
		logging.From(ctx).Warn("embedding cache read failed", "error", err)
	} else if vector != nil {
		return vector, nil
	}

	vector, err = e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Put(ctx, modelName, text, vector); err != nil {
		logging.From(ctx).Warn("embedding cache write failed", "error", err)
	}
	return vector, nil
}
