package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
	"github.com/unihelpdesk/helpdesk/pkg/service/notify"
	"github.com/unihelpdesk/helpdesk/pkg/utils/async"
	"github.com/unihelpdesk/helpdesk/pkg/utils/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type TicketUseCase struct {
	repo          interfaces.Repository
	taxonomy      *model.Taxonomy
	notifier      interfaces.Notifier
	templates     *notify.Templates
	alerter       interfaces.StaffAlerter
	notifyTimeout time.Duration
	newID         func() types.TicketID
	now           func() time.Time
	validate      *validator.Validate
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// Create validates req, stores a new pending ticket under a fresh ID and
// then sends the requester confirmation. The ticket is durable before any
// notification is attempted; a failed confirmation only clears
// Receipt.Notified.
func (uc *TicketUseCase) Create(ctx context.Context, req model.TicketRequest) (*model.TicketReceipt, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "usecase.TicketUseCase.Create")
	defer span.End()

	req = req.Trimmed()
	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	ticket := &model.Ticket{
		CreatedAt:      now,
		UpdatedAt:      now,
		Category:       types.Category(req.Category),
		Role:           types.Role(req.Role),
		RequesterName:  req.Name,
		RequesterEmail: req.Email,
		Issue:          req.Issue,
		Status:         types.TicketStatusPending,
	}

	if err := uc.insert(ctx, ticket); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	ticketsCreated.Inc()
	span.SetAttributes(attribute.String("ticket_id", ticket.ID.String()))

	logging.From(ctx).Info("ticket created",
		model.TicketIDKey, ticket.ID,
		model.CategoryKey, ticket.Category,
		model.RoleKey, ticket.Role,
	)

	receipt := &model.TicketReceipt{
		Ticket:   ticket.Copy(),
		Notified: uc.notify(ctx, ticket),
	}

	if uc.alerter != nil {
		alerted := ticket.Copy()
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.alerter.TicketCreated(ctx, alerted)
		})
	}

	return receipt, nil
}

func (uc *TicketUseCase) validateRequest(req model.TicketRequest) error {
	if err := uc.validate.Struct(req); err != nil {
		var fields []string
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
		}
		return goerr.Wrap(model.ErrInvalidRequest, "ticket request failed validation", goerr.V(FieldsKey, fields))
	}

	if !uc.taxonomy.HasCategory(types.Category(req.Category)) {
		return goerr.Wrap(model.ErrInvalidState, "unknown category", goerr.V(model.CategoryKey, req.Category))
	}
	if !uc.taxonomy.HasRole(types.Role(req.Role)) {
		return goerr.Wrap(model.ErrInvalidRequest, "unknown role", goerr.V(model.RoleKey, req.Role))
	}
	return nil
}

// insert allocates an ID by trying random candidates against the store's
// insert-if-absent until one is accepted.
func (uc *TicketUseCase) insert(ctx context.Context, ticket *model.Ticket) error {
	for attempt := 1; attempt <= MaxIDAttempts; attempt++ {
		ticket.ID = uc.newID()

		err := uc.repo.Ticket().Create(ctx, ticket)
		if err == nil {
			return nil
		}
		if !errors.Is(err, model.ErrTicketIDConflict) {
			return goerr.Wrap(model.ErrPersistence, "failed to store ticket",
				goerr.V(model.TicketIDKey, ticket.ID), goerr.V(CauseKey, err.Error()))
		}

		ticketIDCollisions.Inc()
		logging.From(ctx).Debug("ticket ID collision", model.TicketIDKey, ticket.ID, AttemptsKey, attempt)
	}

	ticket.ID = ""
	return goerr.Wrap(model.ErrIdentityExhausted, "no unused ticket ID found", goerr.V(AttemptsKey, MaxIDAttempts))
}

func (uc *TicketUseCase) notify(ctx context.Context, ticket *model.Ticket) bool {
	subject, body, err := uc.templates.Render(ticket)
	if err != nil {
		notifications.WithLabelValues("failed").Inc()
		logging.From(ctx).Warn("failed to render confirmation", model.TicketIDKey, ticket.ID, "error", err.Error())
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, uc.notifyTimeout)
	defer cancel()

	if err := uc.notifier.Notify(ctx, ticket.RequesterEmail, subject, body); err != nil {
		notifications.WithLabelValues("failed").Inc()
		logging.From(ctx).Warn("confirmation not delivered", model.TicketIDKey, ticket.ID, "error", err.Error())
		return false
	}

	notifications.WithLabelValues("sent").Inc()
	return true
}

// Get looks up a ticket by the ID as typed by the requester.
// Returns nil, nil if no ticket matches.
func (uc *TicketUseCase) Get(ctx context.Context, rawID string) (*model.Ticket, error) {
	id := types.NormalizeTicketID(rawID)
	if err := id.Validate(); err != nil {
		return nil, nil
	}

	t, err := uc.repo.Ticket().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get ticket", goerr.V(model.TicketIDKey, id))
	}
	return t, nil
}

// List returns tickets in creation order
func (uc *TicketUseCase) List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	tickets, err := uc.repo.Ticket().List(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tickets", goerr.V("include_closed", filter.IncludeClosed))
	}
	return tickets, nil
}

func (uc *TicketUseCase) Stats(ctx context.Context) (*model.TicketStats, error) {
	all, err := uc.repo.Ticket().List(ctx, model.TicketFilter{IncludeClosed: true})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tickets")
	}

	stats := &model.TicketStats{Total: len(all)}
	for _, t := range all {
		if t.Status == types.TicketStatusPending {
			stats.Pending++
		}
	}
	return stats, nil
}

// BatchUpdate applies staff edits all-or-nothing. Any unrecognized status,
// unknown category or illegal transition rejects the whole batch with
// ErrInvalidState. Unknown IDs are skipped. It returns how many tickets
// changed.
func (uc *TicketUseCase) BatchUpdate(ctx context.Context, edits []model.TicketEdit) (int, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "usecase.TicketUseCase.BatchUpdate")
	defer span.End()
	span.SetAttributes(attribute.Int("edits", len(edits)))

	changes, err := model.ParseEdits(edits, uc.taxonomy)
	if err != nil {
		batchUpdates.WithLabelValues("rejected").Inc()
		return 0, err
	}
	if len(changes) == 0 {
		return 0, nil
	}

	now := uc.now().UTC()
	apply := func(current *model.Ticket, change model.TicketChange) error {
		_, err := current.Apply(change, now)
		return err
	}

	n, err := uc.repo.Ticket().BatchUpdate(ctx, changes, apply)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if isClientError(err) {
			batchUpdates.WithLabelValues("rejected").Inc()
			return 0, err
		}
		batchUpdates.WithLabelValues("failed").Inc()
		return 0, goerr.Wrap(model.ErrPersistence, "failed to apply ticket batch",
			goerr.V("edits", len(changes)), goerr.V(CauseKey, err.Error()))
	}

	batchUpdates.WithLabelValues("applied").Inc()
	logging.From(ctx).Info("ticket batch applied", "edits", len(changes), "changed", n)
	return n, nil
}

// Reopen returns a resolved or rejected ticket to pending. It is an
// administrative override outside the normal lifecycle and is always logged.
func (uc *TicketUseCase) Reopen(ctx context.Context, rawID, actor string) (*model.Ticket, error) {
	id := types.NormalizeTicketID(rawID)
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(model.ErrTicketNotFound, "malformed ticket ID", goerr.V(model.TicketIDKey, rawID))
	}

	now := uc.now().UTC()
	var previous types.TicketStatus
	reopen := func(current *model.Ticket, _ model.TicketChange) error {
		previous = current.Status
		return current.Reopen(now)
	}

	change := model.TicketChange{ID: id, Status: types.TicketStatusPending}
	n, err := uc.repo.Ticket().BatchUpdate(ctx, []model.TicketChange{change}, reopen)
	if err != nil {
		if isClientError(err) {
			return nil, err
		}
		return nil, goerr.Wrap(model.ErrPersistence, "failed to reopen ticket",
			goerr.V(model.TicketIDKey, id), goerr.V(CauseKey, err.Error()))
	}
	if n == 0 {
		return nil, goerr.Wrap(model.ErrTicketNotFound, "cannot reopen", goerr.V(model.TicketIDKey, id))
	}

	logging.From(ctx).Warn("ticket reopened by override",
		model.TicketIDKey, id,
		model.FromStatusKey, previous,
		"actor", actor,
	)

	t, err := uc.repo.Ticket().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(model.ErrPersistence, "failed to read reopened ticket",
			goerr.V(model.TicketIDKey, id), goerr.V(CauseKey, err.Error()))
	}
	if t == nil {
		return nil, goerr.Wrap(model.ErrTicketNotFound, "reopened ticket disappeared", goerr.V(model.TicketIDKey, id))
	}
	return t, nil
}
