package interfaces

import (
	"context"

	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
)

// KnowledgeSource yields question/answer pairs in source order. Failures to
// read or parse are returned wrapping model.ErrDataSource.
type KnowledgeSource interface {
	Load(ctx context.Context) ([]model.KnowledgePair, error)

	// Name identifies the source in logs
	Name() string
}
