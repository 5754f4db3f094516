package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// TicketStatus is the lifecycle state of a ticket
type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "PENDING"
	TicketStatusResolved TicketStatus = "RESOLVED"
	TicketStatusRejected TicketStatus = "REJECTED"
)

var statusLabels = map[TicketStatus]string{
	TicketStatusPending:  "Υπό Επεξεργασία",
	TicketStatusResolved: "Έτοιμο",
	TicketStatusRejected: "Απορρίφθηκε",
}

// AllTicketStatuses returns every recognized status in lifecycle order
func AllTicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusPending,
		TicketStatusResolved,
		TicketStatusRejected,
	}
}

// IsValid reports whether s is one of the recognized statuses
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusPending,
		TicketStatusResolved,
		TicketStatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition may leave s
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusRejected
}

// Label returns the display label shown to requesters and staff
func (s TicketStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s TicketStatus) String() string {
	return string(s)
}

// ParseTicketStatus accepts either the canonical value or its display label.
// Anything else is rejected; there is no default.
func ParseTicketStatus(s string) (TicketStatus, error) {
	v := strings.TrimSpace(s)

	status := TicketStatus(strings.ToUpper(v))
	if status.IsValid() {
		return status, nil
	}
	for st, label := range statusLabels {
		if label == v {
			return st, nil
		}
	}

	return "", goerr.New("unrecognized ticket status", goerr.V("status", s))
}
