package usecase

import (
	"context"
	"time"

	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
	"github.com/unihelpdesk/helpdesk/pkg/service/notify"
)

type UseCases struct {
	repo          interfaces.Repository
	taxonomy      *model.Taxonomy
	embedder      interfaces.Embedder
	source        interfaces.KnowledgeSource
	notifier      interfaces.Notifier
	templates     *notify.Templates
	alerter       interfaces.StaffAlerter
	notifyTimeout time.Duration
	buildLimit    int
	newID         func() types.TicketID
	now           func() time.Time

	Knowledge *KnowledgeUseCase
	Match     *MatchUseCase
	Ticket    *TicketUseCase
}

type Option func(*UseCases)

// WithTaxonomy sets the accepted categories and roles
func WithTaxonomy(t *model.Taxonomy) Option {
	return func(uc *UseCases) {
		uc.taxonomy = t
	}
}

// WithEmbedder sets the vector oracle used for both the index and queries
func WithEmbedder(e interfaces.Embedder) Option {
	return func(uc *UseCases) {
		uc.embedder = e
	}
}

// WithKnowledgeSource sets where question/answer pairs are loaded from
func WithKnowledgeSource(s interfaces.KnowledgeSource) Option {
	return func(uc *UseCases) {
		uc.source = s
	}
}

// WithNotifier sets the requester confirmation channel and its templates
func WithNotifier(n interfaces.Notifier, templates *notify.Templates) Option {
	return func(uc *UseCases) {
		uc.notifier = n
		uc.templates = templates
	}
}

func WithNotifyTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.notifyTimeout = d
	}
}

func WithStaffAlerter(a interfaces.StaffAlerter) Option {
	return func(uc *UseCases) {
		uc.alerter = a
	}
}

// WithBuildConcurrency bounds parallel embedding calls during an index build
func WithBuildConcurrency(n int) Option {
	return func(uc *UseCases) {
		uc.buildLimit = n
	}
}

// WithIDGenerator replaces the random ticket ID source
func WithIDGenerator(f func() types.TicketID) Option {
	return func(uc *UseCases) {
		uc.newID = f
	}
}

func WithClock(f func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = f
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:          repo,
		taxonomy:      model.DefaultTaxonomy(),
		notifier:      notify.Disabled{},
		notifyTimeout: 10 * time.Second,
		buildLimit:    8,
		newID:         model.NewTicketID,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.templates == nil {
		// default templates always parse
		uc.templates, _ = notify.NewTemplates("", "")
	}

	uc.Knowledge = NewKnowledgeUseCase(uc.source, uc.embedder, uc.buildLimit, uc.now)
	uc.Match = NewMatchUseCase(uc.Knowledge, uc.embedder)
	uc.Ticket = &TicketUseCase{
		repo:          repo,
		taxonomy:      uc.taxonomy,
		notifier:      uc.notifier,
		templates:     uc.templates,
		alerter:       uc.alerter,
		notifyTimeout: uc.notifyTimeout,
		newID:         uc.newID,
		now:           uc.now,
		validate:      newValidator(),
	}

	return uc
}

// Taxonomy returns the configured categories and roles
func (uc *UseCases) Taxonomy() *model.Taxonomy {
	return uc.taxonomy
}

// ReloadKnowledge rebuilds the knowledge index, for the reload worker
func (uc *UseCases) ReloadKnowledge(ctx context.Context) error {
	_, err := uc.Knowledge.Reload(ctx)
	return err
}
