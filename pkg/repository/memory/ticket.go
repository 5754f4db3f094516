package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
)

type ticketRepository struct {
	mu      sync.RWMutex
	tickets map[types.TicketID]*model.Ticket
}

func newTicketRepository() *ticketRepository {
	return &ticketRepository{
		tickets: make(map[types.TicketID]*model.Ticket),
	}
}

func (r *ticketRepository) Create(ctx context.Context, t *model.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tickets[t.ID]; exists {
		return goerr.Wrap(model.ErrTicketIDConflict, "ticket already exists", goerr.V(model.TicketIDKey, t.ID))
	}
	r.tickets[t.ID] = t.Copy()
	return nil
}

func (r *ticketRepository) Get(ctx context.Context, id types.TicketID) (*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.tickets[id].Copy(), nil
}

func (r *ticketRepository) List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		if !filter.Accepts(t) {
			continue
		}
		result = append(result, t.Copy())
	}
	slices.SortFunc(result, compareTickets)
	return result, nil
}

// BatchUpdate stages every change on copies and swaps them in only once all
// of them succeeded, so a failing apply leaves the map untouched.
func (r *ticketRepository) BatchUpdate(ctx context.Context, changes []model.TicketChange, apply model.ApplyFunc) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := make(map[types.TicketID]*model.Ticket)
	for _, change := range changes {
		current, ok := staged[change.ID]
		if !ok {
			stored, exists := r.tickets[change.ID]
			if !exists {
				continue
			}
			current = stored.Copy()
		}

		if err := apply(current, change); err != nil {
			return 0, goerr.Wrap(err, "batch update aborted", goerr.V(model.TicketIDKey, change.ID))
		}
		staged[change.ID] = current
	}

	modified := 0
	for id, t := range staged {
		if *t != *r.tickets[id] {
			modified++
		}
		r.tickets[id] = t
	}
	return modified, nil
}

func compareTickets(a, b *model.Ticket) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
