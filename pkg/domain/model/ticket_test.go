package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
)

func TestNewTicketID(t *testing.T) {
	seen := make(map[types.TicketID]bool)
	for range 1000 {
		id := model.NewTicketID()
		gt.NoError(t, id.Validate())
		seen[id] = true
	}
	// 36^4 possible codes; 1000 draws colliding into fewer than 900 distinct
	// values would point at a broken generator.
	gt.N(t, len(seen)).Greater(900)
}

func TestTicketFilter_Accepts(t *testing.T) {
	pending := &model.Ticket{Status: types.TicketStatusPending}
	resolved := &model.Ticket{Status: types.TicketStatusResolved}

	gt.B(t, model.TicketFilter{}.Accepts(pending)).True()
	gt.B(t, model.TicketFilter{}.Accepts(resolved)).False()
	gt.B(t, model.TicketFilter{IncludeClosed: true}.Accepts(resolved)).True()
}

func TestTicket_Copy(t *testing.T) {
	orig := &model.Ticket{ID: "AB12", Status: types.TicketStatusPending}
	cp := orig.Copy()
	cp.Status = types.TicketStatusResolved
	gt.V(t, orig.Status).Equal(types.TicketStatusPending)

	var nilTicket *model.Ticket
	gt.V(t, nilTicket.Copy()).Nil()
}

func TestTicketRequest_Trimmed(t *testing.T) {
	r := model.TicketRequest{Name: " Maria ", Email: " m@example.com\n", Issue: "\tneed help "}.Trimmed()
	gt.S(t, r.Name).Equal("Maria")
	gt.S(t, r.Email).Equal("m@example.com")
	gt.S(t, r.Issue).Equal("need help")
}

func TestTaxonomy_Validate(t *testing.T) {
	gt.NoError(t, model.DefaultTaxonomy().Validate())

	gt.Error(t, (&model.Taxonomy{Roles: []types.Role{"a"}}).Validate())
	gt.Error(t, (&model.Taxonomy{Categories: []types.Category{"a"}}).Validate())
	gt.Error(t, (&model.Taxonomy{Categories: []types.Category{"a", "a"}, Roles: []types.Role{"r"}}).Validate())
	gt.Error(t, (&model.Taxonomy{Categories: []types.Category{"a"}, Roles: []types.Role{"r", "r"}}).Validate())

	tx := model.DefaultTaxonomy()
	gt.B(t, tx.HasCategory("Γενικά")).True()
	gt.B(t, tx.HasCategory("Parking")).False()
	gt.B(t, tx.HasRole("Φοιτητής")).True()
}
