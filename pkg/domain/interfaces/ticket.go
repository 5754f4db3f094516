package interfaces

import (
	"context"

	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
)

// TicketRepository defines durable storage for tickets
type TicketRepository interface {
	// Create inserts t if no ticket with t.ID exists. An existing ID yields
	// model.ErrTicketIDConflict and leaves the stored ticket untouched.
	Create(ctx context.Context, t *model.Ticket) error

	// Get retrieves a ticket by exact ID.
	// Returns nil, nil if no ticket has the given ID.
	Get(ctx context.Context, id types.TicketID) (*model.Ticket, error)

	// List returns the tickets filter accepts ordered by CreatedAt, then ID
	List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error)

	// BatchUpdate applies changes in order within one transaction. For each
	// change whose ID exists, apply receives the ticket as currently stored;
	// IDs that do not exist are skipped. If apply returns an error nothing is
	// written. It returns the number of tickets that were modified.
	BatchUpdate(ctx context.Context, changes []model.TicketChange, apply model.ApplyFunc) (int, error)
}
