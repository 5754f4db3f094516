package usecase

import (
	"errors"

	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
)

// MaxIDAttempts bounds how many random IDs Create tries before giving up
const MaxIDAttempts = 16

// Context keys for error values
const (
	AttemptsKey = "attempts"
	FieldsKey   = "fields"
	CauseKey    = "cause"
	EntriesKey  = "entries"
)

// isClientError reports whether err was caused by the caller's input
// rather than by a backend failure.
func isClientError(err error) bool {
	return errors.Is(err, model.ErrInvalidState) || errors.Is(err, model.ErrInvalidRequest)
}
