package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/unihelpdesk/helpdesk/pkg/usecase"

// MatchUseCase answers a free-text question from the active knowledge index
type MatchUseCase struct {
	knowledge *KnowledgeUseCase
	embedder  interfaces.Embedder
}

func NewMatchUseCase(knowledge *KnowledgeUseCase, embedder interfaces.Embedder) *MatchUseCase {
	return &MatchUseCase{
		knowledge: knowledge,
		embedder:  embedder,
	}
}

// Match embeds query and scores it against the index. An empty index is a
// normal "no match" and the embedder is not called. Any failure while
// scoring is returned as an error, never as a silent "no match".
func (uc *MatchUseCase) Match(ctx context.Context, query string) (*model.MatchResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "usecase.MatchUseCase.Match")
	defer span.End()

	idx := uc.knowledge.Index()
	span.SetAttributes(attribute.Int("index_entries", idx.Len()))

	if idx.IsEmpty() {
		matchOutcomes.WithLabelValues("empty_index").Inc()
		logging.From(ctx).Debug("match skipped, knowledge index is empty", "query", query)
		return &model.MatchResult{}, nil
	}

	result, err := uc.score(ctx, idx, query)
	if err != nil {
		matchOutcomes.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	decision := "escalate"
	if result.Answered {
		decision = "answer"
		matchOutcomes.WithLabelValues("answered").Inc()
	} else {
		matchOutcomes.WithLabelValues("unanswered").Inc()
	}
	matchScore.Observe(result.Score)
	span.SetAttributes(
		attribute.Float64("score", result.Score),
		attribute.Bool("answered", result.Answered),
	)

	logging.From(ctx).Debug("match scored",
		"query", query,
		"matched_question", result.MatchedQuestion,
		"score", result.Score,
		"decision", decision,
	)

	return result, nil
}

func (uc *MatchUseCase) score(ctx context.Context, idx *model.KnowledgeIndex, query string) (*model.MatchResult, error) {
	if uc.embedder == nil {
		return nil, goerr.Wrap(model.ErrEmbedding, "no embedder configured")
	}

	vec, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		if !errors.Is(err, model.ErrEmbedding) {
			err = goerr.Wrap(model.ErrEmbedding, "failed to embed query", goerr.V(CauseKey, err.Error()))
		}
		return nil, err
	}

	result, err := idx.Match(vec)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to score query",
			goerr.V(model.SourceKey, idx.Source()), goerr.V("model", uc.embedder.Model()))
	}
	return result, nil
}
