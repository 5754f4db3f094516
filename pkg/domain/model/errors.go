package model

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy shared by the matching and ticket subsystems. Callers test
// with errors.Is; every returned error wraps exactly one of these.
var (
	// ErrDataSource means the knowledge source could not be read or parsed.
	ErrDataSource = goerr.New("knowledge data source unavailable")
	// ErrEmbedding means the vector oracle failed for a query or entry.
	ErrEmbedding = goerr.New("embedding failed")
	// ErrDimensionMismatch means two vectors from different models were compared.
	ErrDimensionMismatch = goerr.New("vector dimension mismatch")

	// ErrIdentityExhausted means no unused ticket ID was found within the attempt bound.
	ErrIdentityExhausted = goerr.New("ticket identity space exhausted")
	// ErrPersistence means a durable write failed and nothing was committed.
	ErrPersistence = goerr.New("ticket persistence failed")
	// ErrInvalidState covers unrecognized statuses or categories and illegal transitions.
	ErrInvalidState = goerr.New("invalid ticket state")
	// ErrInvalidTransition is the ErrInvalidState raised for a forbidden lifecycle move.
	ErrInvalidTransition = goerr.Wrap(ErrInvalidState, "invalid status transition")
	// ErrInvalidRequest means a new ticket request failed field validation.
	ErrInvalidRequest = goerr.New("invalid ticket request")

	// ErrTicketIDConflict is returned by repositories when Create hits an existing ID.
	ErrTicketIDConflict = goerr.New("ticket ID already exists")
	// ErrTicketNotFound is returned by operations that require an existing ticket.
	ErrTicketNotFound = goerr.New("ticket not found")
)

// Context keys for error values
const (
	TicketIDKey   = "ticket_id"
	StatusKey     = "status"
	FromStatusKey = "from_status"
	ToStatusKey   = "to_status"
	CategoryKey   = "category"
	RoleKey       = "role"
	EditIndexKey  = "edit_index"
	SourceKey     = "source"
)
