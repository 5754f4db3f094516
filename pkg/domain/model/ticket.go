package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
)

// Ticket is an escalated request awaiting or having received staff action
type Ticket struct {
	ID             types.TicketID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Category       types.Category
	Role           types.Role
	RequesterName  string
	RequesterEmail string `masq:"secret"`
	Issue          string
	Status         types.TicketStatus
}

// Copy returns a detached copy of t
func (t *Ticket) Copy() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// TicketRequest is the requester-supplied part of a new ticket
type TicketRequest struct {
	Category string `validate:"required"`
	Role     string `validate:"required"`
	Name     string `validate:"required,max=200"`
	Email    string `validate:"required,email,max=320" masq:"secret"`
	Issue    string `validate:"required,max=10000"`
}

// Trimmed returns r with surrounding whitespace removed from every field
func (r TicketRequest) Trimmed() TicketRequest {
	return TicketRequest{
		Category: strings.TrimSpace(r.Category),
		Role:     strings.TrimSpace(r.Role),
		Name:     strings.TrimSpace(r.Name),
		Email:    strings.TrimSpace(r.Email),
		Issue:    strings.TrimSpace(r.Issue),
	}
}

// TicketReceipt is returned to the requester once a ticket is durable.
// Notified is advisory: false only means the confirmation message may not
// have been delivered.
type TicketReceipt struct {
	Ticket   *Ticket
	Notified bool
}

// TicketFilter narrows a staff listing
type TicketFilter struct {
	// IncludeClosed lists resolved and rejected tickets as well as pending ones.
	IncludeClosed bool
}

// Accepts reports whether t passes the filter
func (f TicketFilter) Accepts(t *Ticket) bool {
	return f.IncludeClosed || t.Status == types.TicketStatusPending
}

// TicketStats is the staff dashboard summary
type TicketStats struct {
	Pending int
	Total   int
}

// NewTicketID draws a random candidate ticket ID. Uniqueness is not
// guaranteed; the repository detects collisions on insert.
func NewTicketID() types.TicketID {
	const alphabet = types.TicketIDAlphabet
	// Largest multiple of len(alphabet) below 256, so every symbol is equally likely.
	const limit = 256 - 256%len(alphabet)

	id := make([]byte, 0, types.TicketIDLength)
	for len(id) < types.TicketIDLength {
		u := uuid.New()
		for i, b := range u {
			// bytes 6 and 8 carry the UUID version and variant bits
			if i == 6 || i == 8 || int(b) >= limit {
				continue
			}
			id = append(id, alphabet[int(b)%len(alphabet)])
			if len(id) == types.TicketIDLength {
				break
			}
		}
	}
	return types.TicketID(id)
}
