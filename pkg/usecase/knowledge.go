package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// KnowledgeUseCase owns the active knowledge index. Readers always see one
// complete snapshot; Reload builds the next one off to the side and swaps it
// in with a single pointer store.
type KnowledgeUseCase struct {
	source   interfaces.KnowledgeSource
	embedder interfaces.Embedder
	limit    int
	now      func() time.Time

	index    atomic.Pointer[model.KnowledgeIndex]
	reloadMu sync.Mutex
}

func NewKnowledgeUseCase(source interfaces.KnowledgeSource, embedder interfaces.Embedder, limit int, now func() time.Time) *KnowledgeUseCase {
	if limit < 1 {
		limit = 1
	}
	if now == nil {
		now = time.Now
	}
	return &KnowledgeUseCase{
		source:   source,
		embedder: embedder,
		limit:    limit,
		now:      now,
	}
}

// Index returns the active snapshot; nil until the first reload
func (uc *KnowledgeUseCase) Index() *model.KnowledgeIndex {
	return uc.index.Load()
}

// Reload loads the source and rebuilds the index.
//
// A source that cannot be read leaves an empty index active, so every query
// escalates instead of answering from stale data. A failure while embedding
// keeps the previous snapshot. Both cases return the error.
func (uc *KnowledgeUseCase) Reload(ctx context.Context) (*model.KnowledgeIndex, error) {
	uc.reloadMu.Lock()
	defer uc.reloadMu.Unlock()

	if uc.source == nil {
		idx := model.NewKnowledgeIndex("", nil, uc.now())
		uc.swap(idx)
		return idx, nil
	}

	logger := logging.From(ctx).With(model.SourceKey, uc.source.Name())

	pairs, err := uc.source.Load(ctx)
	if err != nil {
		knowledgeReloads.WithLabelValues("source_error").Inc()
		if errors.Is(err, model.ErrDataSource) {
			uc.swap(model.NewKnowledgeIndex(uc.source.Name(), nil, uc.now()))
			logger.Warn("knowledge source unavailable, answering nothing until next reload", "error", err.Error())
		}
		return nil, goerr.Wrap(err, "failed to load knowledge source", goerr.V(model.SourceKey, uc.source.Name()))
	}

	if uc.embedder == nil && len(pairs) > 0 {
		knowledgeReloads.WithLabelValues("build_error").Inc()
		return nil, goerr.Wrap(model.ErrEmbedding, "no embedder configured")
	}

	idx, err := buildIndex(ctx, uc.source.Name(), pairs, uc.embedder, uc.limit, uc.now())
	if err != nil {
		knowledgeReloads.WithLabelValues("build_error").Inc()
		return nil, goerr.Wrap(err, "failed to build knowledge index",
			goerr.V(model.SourceKey, uc.source.Name()), goerr.V(EntriesKey, len(pairs)))
	}

	uc.swap(idx)
	knowledgeReloads.WithLabelValues("ok").Inc()
	logger.Info("knowledge index loaded", "entries", idx.Len())
	return idx, nil
}

func (uc *KnowledgeUseCase) swap(idx *model.KnowledgeIndex) {
	uc.index.Store(idx)
	knowledgeEntries.Set(float64(idx.Len()))
}

// buildIndex embeds every question with at most limit calls in flight.
// Entries keep source order. Any failure discards the whole build.
func buildIndex(ctx context.Context, source string, pairs []model.KnowledgePair, embedder interfaces.Embedder, limit int, now time.Time) (*model.KnowledgeIndex, error) {
	entries := make([]model.KnowledgeEntry, len(pairs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, pair := range pairs {
		eg.Go(func() error {
			vec, err := embedder.Embed(ctx, pair.Question)
			if err != nil {
				return goerr.Wrap(err, "failed to embed question", goerr.V("row", i))
			}
			entries[i] = model.KnowledgeEntry{
				Question: pair.Question,
				Answer:   pair.Answer,
				Vector:   vec,
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if len(entries) > 0 {
		dim := len(entries[0].Vector)
		for i, e := range entries {
			if len(e.Vector) != dim {
				return nil, goerr.Wrap(model.ErrDimensionMismatch, "embedder returned inconsistent dimensions",
					goerr.V("row", i), goerr.V("expected", dim), goerr.V("actual", len(e.Vector)))
			}
		}
	}

	return model.NewKnowledgeIndex(source, entries, now), nil
}
