package interfaces

import (
	"context"

	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
)

// Notifier delivers a message to a requester address
type Notifier interface {
	Notify(ctx context.Context, address, subject, body string) error
}

// StaffAlerter announces new tickets to staff
type StaffAlerter interface {
	TicketCreated(ctx context.Context, t *model.Ticket) error
}
