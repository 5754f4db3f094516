package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
)

// IsValidTransition reports whether a ticket in from may move to to.
// Pending may move to either terminal state, terminal states never move,
// and re-asserting the current state is always allowed so that re-applying
// a batch has no further effect.
func IsValidTransition(from, to types.TicketStatus) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	return from == types.TicketStatusPending
}

// TicketEdit is one row of a staff batch as submitted
type TicketEdit struct {
	ID       string
	Status   string
	Category string
}

// TicketChange is a TicketEdit whose values passed static validation.
// An empty Category leaves the stored category untouched.
type TicketChange struct {
	ID       types.TicketID
	Status   types.TicketStatus
	Category types.Category
}

// ApplyFunc mutates current according to change. Repositories call it inside
// their transaction against the row as it is stored at that moment; a non-nil
// error aborts the whole batch.
type ApplyFunc func(current *Ticket, change TicketChange) error

// ParseEdits validates every edit before anything is written. The first
// invalid edit fails the whole batch with ErrInvalidState.
func ParseEdits(edits []TicketEdit, taxonomy *Taxonomy) ([]TicketChange, error) {
	changes := make([]TicketChange, 0, len(edits))

	for i, edit := range edits {
		// A malformed ID can never match a ticket, so it is skipped like an
		// unknown one instead of failing the batch.
		id := types.NormalizeTicketID(edit.ID)
		if id.Validate() != nil {
			continue
		}

		status, err := types.ParseTicketStatus(edit.Status)
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidState, "unrecognized status in batch",
				goerr.V(EditIndexKey, i), goerr.V(TicketIDKey, id), goerr.V(StatusKey, edit.Status))
		}

		category := types.Category(strings.TrimSpace(edit.Category))
		if category != "" && !taxonomy.HasCategory(category) {
			return nil, goerr.Wrap(ErrInvalidState, "unknown category in batch",
				goerr.V(EditIndexKey, i), goerr.V(TicketIDKey, id), goerr.V(CategoryKey, edit.Category))
		}

		changes = append(changes, TicketChange{
			ID:       id,
			Status:   status,
			Category: category,
		})
	}

	return changes, nil
}

// Apply moves t to change.Status and change.Category, enforcing the
// lifecycle. It reports whether anything differed.
func (t *Ticket) Apply(change TicketChange, now time.Time) (bool, error) {
	if !IsValidTransition(t.Status, change.Status) {
		return false, goerr.Wrap(ErrInvalidTransition, "ticket cannot leave its current status",
			goerr.V(TicketIDKey, t.ID),
			goerr.V(FromStatusKey, t.Status),
			goerr.V(ToStatusKey, change.Status))
	}

	changed := false
	if t.Status != change.Status {
		t.Status = change.Status
		changed = true
	}
	if change.Category != "" && t.Category != change.Category {
		t.Category = change.Category
		changed = true
	}
	if changed {
		t.UpdatedAt = now
	}
	return changed, nil
}

// Reopen returns a terminal ticket to pending. It bypasses the lifecycle
// and is only reachable through the explicit staff override.
func (t *Ticket) Reopen(now time.Time) error {
	if !t.Status.IsTerminal() {
		return goerr.Wrap(ErrInvalidState, "only resolved or rejected tickets can be reopened",
			goerr.V(TicketIDKey, t.ID), goerr.V(StatusKey, t.Status))
	}
	t.Status = types.TicketStatusPending
	t.UpdatedAt = now
	return nil
}
