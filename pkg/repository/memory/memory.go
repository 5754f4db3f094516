package memory

import (
	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
)

// Memory keeps everything in process memory. Data is lost on restart; it
// backs tests and local development.
type Memory struct {
	ticket *ticketRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		ticket: newTicketRepository(),
	}
}

func (m *Memory) Ticket() interfaces.TicketRepository {
	return m.ticket
}

func (m *Memory) Close() error {
	return nil
}
