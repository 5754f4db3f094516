package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
	"github.com/unihelpdesk/helpdesk/pkg/repository/memory"
	"github.com/unihelpdesk/helpdesk/pkg/service/notify"
	"github.com/unihelpdesk/helpdesk/pkg/usecase"
)

func validRequest() model.TicketRequest {
	return model.TicketRequest{
		Category: "Γενικά",
		Role:     "Φοιτητής",
		Name:     "Α. Β.",
		Email:    "a@upatras.gr",
		Issue:    "Δεν μπορώ να συνδεθώ στο eclass",
	}
}

func TestTicketCreate(t *testing.T) {
	ctx := context.Background()
	n := &mockNotifier{}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	uc := usecase.New(memory.New(),
		usecase.WithNotifier(n, nil),
		usecase.WithClock(func() time.Time { return now }))

	receipt, err := uc.Ticket.Create(ctx, validRequest())
	gt.NoError(t, err).Required()
	gt.Bool(t, receipt.Notified).True()

	ticket := receipt.Ticket
	gt.NoError(t, ticket.ID.Validate())
	gt.Value(t, ticket.Status).Equal(types.TicketStatusPending)
	gt.Value(t, ticket.CreatedAt).Equal(now)
	gt.Value(t, ticket.Category).Equal(types.Category("Γενικά"))

	stored, err := uc.Ticket.Get(ctx, string(ticket.ID))
	gt.NoError(t, err).Required()
	gt.Value(t, stored).Equal(ticket)

	gt.Array(t, n.sent).Length(1).Required()
	gt.Value(t, n.sent[0].address).Equal("a@upatras.gr")
	gt.Value(t, n.sent[0].subject).Equal("Αίτημα: " + string(ticket.ID))
	gt.String(t, n.sent[0].body).Contains("Γεια σας Α. Β.,")
	gt.String(t, n.sent[0].body).Contains(string(ticket.ID))
}

func TestTicketCreate_DistinctIDs(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	const count = 50
	ids := make(chan types.TicketID, count)
	var wg sync.WaitGroup
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			receipt, err := uc.Ticket.Create(ctx, validRequest())
			if err != nil {
				t.Error(err)
				return
			}
			ids <- receipt.Ticket.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[types.TicketID]bool{}
	for id := range ids {
		gt.Bool(t, seen[id]).False()
		seen[id] = true
	}
	gt.Value(t, len(seen)).Equal(count)
}

func TestTicketCreate_RetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New(), usecase.WithIDGenerator(sequenceIDs("AAAA", "AAAA", "AAAA", "BBBB")))

	first, err := uc.Ticket.Create(ctx, validRequest())
	gt.NoError(t, err).Required()
	gt.Value(t, first.Ticket.ID).Equal(types.TicketID("AAAA"))

	second, err := uc.Ticket.Create(ctx, validRequest())
	gt.NoError(t, err).Required()
	gt.Value(t, second.Ticket.ID).Equal(types.TicketID("BBBB"))
}

func TestTicketCreate_IdentityExhausted(t *testing.T) {
	ctx := context.Background()
	calls := 0
	gen := func() types.TicketID {
		calls++
		return "ZZZZ"
	}
	uc := usecase.New(memory.New(), usecase.WithIDGenerator(gen))

	_, err := uc.Ticket.Create(ctx, validRequest())
	gt.NoError(t, err).Required()
	calls = 0

	_, err = uc.Ticket.Create(ctx, validRequest())
	gt.Error(t, err).Is(model.ErrIdentityExhausted)
	gt.Value(t, calls).Equal(usecase.MaxIDAttempts)

	all, err := uc.Ticket.List(ctx, model.TicketFilter{IncludeClosed: true})
	gt.NoError(t, err)
	gt.Array(t, all).Length(1)
}

func TestTicketCreate_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	n := &mockNotifier{}
	repo := &repoWith{ticket: &failingRepository{
		TicketRepository: memory.New().Ticket(),
		createErr:        errors.New("disk I/O error"),
	}}
	uc := usecase.New(repo, usecase.WithNotifier(n, nil))

	receipt, err := uc.Ticket.Create(ctx, validRequest())
	gt.Error(t, err).Is(model.ErrPersistence)
	gt.Value(t, receipt).Nil()
	gt.Array(t, n.sent).Length(0)
}

func TestTicketCreate_NotificationFailure(t *testing.T) {
	ctx := context.Background()
	n := &mockNotifier{err: errors.New("dial tcp: connection refused")}
	uc := usecase.New(memory.New(), usecase.WithNotifier(n, nil))

	receipt, err := uc.Ticket.Create(ctx, validRequest())
	gt.NoError(t, err).Required()
	gt.Bool(t, receipt.Notified).False()

	stored, err := uc.Ticket.Get(ctx, string(receipt.Ticket.ID))
	gt.NoError(t, err).Required()
	gt.Value(t, stored).NotNil()
	gt.Value(t, stored.Status).Equal(types.TicketStatusPending)
}

func TestTicketCreate_NotifierNotConfigured(t *testing.T) {
	uc := usecase.New(memory.New())

	receipt, err := uc.Ticket.Create(context.Background(), validRequest())
	gt.NoError(t, err).Required()
	gt.Bool(t, receipt.Notified).False()
}

func TestTicketCreate_CustomTemplates(t *testing.T) {
	n := &mockNotifier{}
	tmpl, err := notify.NewTemplates("Ticket {{.ID}}", "Category: {{.Category}}")
	gt.NoError(t, err).Required()
	uc := usecase.New(memory.New(), usecase.WithNotifier(n, tmpl))

	receipt, err := uc.Ticket.Create(context.Background(), validRequest())
	gt.NoError(t, err).Required()
	gt.Array(t, n.sent).Length(1).Required()
	gt.Value(t, n.sent[0].subject).Equal("Ticket " + string(receipt.Ticket.ID))
	gt.Value(t, n.sent[0].body).Equal("Category: Γενικά")
}

func TestTicketCreate_StaffAlert(t *testing.T) {
	alerter := &mockAlerter{ch: make(chan *model.Ticket, 1)}
	uc := usecase.New(memory.New(), usecase.WithStaffAlerter(alerter))

	receipt, err := uc.Ticket.Create(context.Background(), validRequest())
	gt.NoError(t, err).Required()

	select {
	case alerted := <-alerter.ch:
		gt.Value(t, alerted.ID).Equal(receipt.Ticket.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("staff alert was not dispatched")
	}
}

func TestTicketCreate_Validation(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name   string
		modify func(*model.TicketRequest)
		target error
	}{
		{"missing name", func(r *model.TicketRequest) { r.Name = "  " }, model.ErrInvalidRequest},
		{"bad email", func(r *model.TicketRequest) { r.Email = "not-an-email" }, model.ErrInvalidRequest},
		{"missing issue", func(r *model.TicketRequest) { r.Issue = "" }, model.ErrInvalidRequest},
		{"unknown role", func(r *model.TicketRequest) { r.Role = "Καθηγητής" }, model.ErrInvalidRequest},
		{"unknown category", func(r *model.TicketRequest) { r.Category = "Άγνωστο" }, model.ErrInvalidState},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			uc := usecase.New(memory.New())
			req := validRequest()
			tc.modify(&req)

			_, err := uc.Ticket.Create(ctx, req)
			gt.Error(t, err).Is(tc.target)

			all, err := uc.Ticket.List(ctx, model.TicketFilter{IncludeClosed: true})
			gt.NoError(t, err)
			gt.Array(t, all).Length(0)
		})
	}
}

func TestTicketGet_NormalizesID(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New(), usecase.WithIDGenerator(sequenceIDs("AB12")))

	_, err := uc.Ticket.Create(ctx, validRequest())
	gt.NoError(t, err).Required()

	got, err := uc.Ticket.Get(ctx, " ab12 ")
	gt.NoError(t, err).Required()
	gt.Value(t, got).NotNil()
	gt.Value(t, got.ID).Equal(types.TicketID("AB12"))

	missing, err := uc.Ticket.Get(ctx, "ZZ99")
	gt.NoError(t, err)
	gt.Value(t, missing).Nil()

	malformed, err := uc.Ticket.Get(ctx, "not-an-id")
	gt.NoError(t, err)
	gt.Value(t, malformed).Nil()
}

func newTicketFixture(t *testing.T, ids ...types.TicketID) *usecase.UseCases {
	t.Helper()
	uc := usecase.New(memory.New(), usecase.WithIDGenerator(sequenceIDs(ids...)))
	for range ids {
		_, err := uc.Ticket.Create(context.Background(), validRequest())
		gt.NoError(t, err).Required()
	}
	return uc
}

func TestTicketList_FilterAndStats(t *testing.T) {
	ctx := context.Background()
	uc := newTicketFixture(t, "AAAA", "BBBB", "CCCC")

	_, err := uc.Ticket.BatchUpdate(ctx, []model.TicketEdit{{ID: "BBBB", Status: "RESOLVED"}})
	gt.NoError(t, err).Required()

	open, err := uc.Ticket.List(ctx, model.TicketFilter{})
	gt.NoError(t, err).Required()
	gt.Array(t, open).Length(2)

	all, err := uc.Ticket.List(ctx, model.TicketFilter{IncludeClosed: true})
	gt.NoError(t, err).Required()
	gt.Array(t, all).Length(3)

	stats, err := uc.Ticket.Stats(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, stats.Pending).Equal(2)
	gt.Value(t, stats.Total).Equal(3)
}

func TestTicketBatchUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves and rejects pending tickets", func(t *testing.T) {
		uc := newTicketFixture(t, "AAAA", "BBBB")
		n, err := uc.Ticket.BatchUpdate(ctx, []model.TicketEdit{
			{ID: "AAAA", Status: "RESOLVED"},
			{ID: "bbbb", Status: "Απορρίφθηκε", Category: "Εγγραφές"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(2)

		a, _ := uc.Ticket.Get(ctx, "AAAA")
		b, _ := uc.Ticket.Get(ctx, "BBBB")
		gt.Value(t, a.Status).Equal(types.TicketStatusResolved)
		gt.Value(t, b.Status).Equal(types.TicketStatusRejected)
		gt.Value(t, b.Category).Equal(types.Category("Εγγραφές"))
	})

	t.Run("is idempotent", func(t *testing.T) {
		uc := newTicketFixture(t, "AAAA")
		edits := []model.TicketEdit{{ID: "AAAA", Status: "RESOLVED", Category: "Εγγραφές"}}

		n, err := uc.Ticket.BatchUpdate(ctx, edits)
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(1)
		once, _ := uc.Ticket.Get(ctx, "AAAA")

		n, err = uc.Ticket.BatchUpdate(ctx, edits)
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(0)
		twice, _ := uc.Ticket.Get(ctx, "AAAA")
		gt.Value(t, twice).Equal(once)
	})

	t.Run("unrecognized status rejects batch", func(t *testing.T) {
		uc := newTicketFixture(t, "AAAA", "BBBB")
		_, err := uc.Ticket.BatchUpdate(ctx, []model.TicketEdit{
			{ID: "AAAA", Status: "RESOLVED"},
			{ID: "BBBB", Status: "DONE"},
		})
		gt.Error(t, err).Is(model.ErrInvalidState)

		a, _ := uc.Ticket.Get(ctx, "AAAA")
		gt.Value(t, a.Status).Equal(types.TicketStatusPending)
	})

	t.Run("unknown category rejects batch", func(t *testing.T) {
		uc := newTicketFixture(t, "AAAA")
		_, err := uc.Ticket.BatchUpdate(ctx, []model.TicketEdit{{ID: "AAAA", Status: "PENDING", Category: "Άγνωστο"}})
		gt.Error(t, err).Is(model.ErrInvalidState)
	})

	t.Run("terminal ticket cannot move", func(t *testing.T) {
		uc := newTicketFixture(t, "AAAA", "BBBB")
		_, err := uc.Ticket.BatchUpdate(ctx, []model.TicketEdit{{ID: "AAAA", Status: "RESOLVED"}})
		gt.NoError(t, err).Required()

		_, err = uc.Ticket.BatchUpdate(ctx, []model.TicketEdit{
			{ID: "BBBB", Status: "RESOLVED"},
			{ID: "AAAA", Status: "PENDING"},
		})
		gt.Error(t, err).Is(model.ErrInvalidTransition)

		b, _ := uc.Ticket.Get(ctx, "BBBB")
		gt.Value(t, b.Status).Equal(types.TicketStatusPending)
	})

	t.Run("unknown IDs are skipped", func(t *testing.T) {
		uc := newTicketFixture(t, "AAAA")
		n, err := uc.Ticket.BatchUpdate(ctx, []model.TicketEdit{
			{ID: "ZZZZ", Status: "RESOLVED"},
			{ID: "bad id", Status: "RESOLVED"},
			{ID: "AAAA", Status: "REJECTED"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, n).Equal(1)
	})

	t.Run("storage failure is a persistence error", func(t *testing.T) {
		inner := memory.New().Ticket()
		repo := &repoWith{ticket: &failingRepository{TicketRepository: inner, batchErr: errors.New("database is locked")}}
		uc := usecase.New(repo, usecase.WithIDGenerator(sequenceIDs("AAAA")))
		_, err := uc.Ticket.Create(ctx, validRequest())
		gt.NoError(t, err).Required()

		_, err = uc.Ticket.BatchUpdate(ctx, []model.TicketEdit{{ID: "AAAA", Status: "RESOLVED"}})
		gt.Error(t, err).Is(model.ErrPersistence)
	})
}

func TestTicketBatchUpdate_ConcurrentConflict(t *testing.T) {
	ctx := context.Background()
	uc := newTicketFixture(t, "AB12")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, status := range []string{"RESOLVED", "REJECTED"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = uc.Ticket.BatchUpdate(ctx, []model.TicketEdit{{ID: "AB12", Status: status}})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			gt.Error(t, err).Is(model.ErrInvalidState)
		}
	}
	gt.Value(t, succeeded).Equal(1)

	final, err := uc.Ticket.Get(ctx, "AB12")
	gt.NoError(t, err).Required()
	gt.Bool(t, final.Status.IsTerminal()).True()
}

func TestTicketReopen(t *testing.T) {
	ctx := context.Background()
	uc := newTicketFixture(t, "AAAA", "BBBB")

	_, err := uc.Ticket.BatchUpdate(ctx, []model.TicketEdit{{ID: "AAAA", Status: "REJECTED"}})
	gt.NoError(t, err).Required()

	reopened, err := uc.Ticket.Reopen(ctx, "aaaa", "staff")
	gt.NoError(t, err).Required()
	gt.Value(t, reopened.Status).Equal(types.TicketStatusPending)

	_, err = uc.Ticket.Reopen(ctx, "BBBB", "staff")
	gt.Error(t, err).Is(model.ErrInvalidState)

	_, err = uc.Ticket.Reopen(ctx, "ZZZZ", "staff")
	gt.Error(t, err).Is(model.ErrTicketNotFound)

	_, err = uc.Ticket.Reopen(ctx, "!!", "staff")
	gt.Error(t, err).Is(model.ErrTicketNotFound)
}

func TestTicketReopen_TicketGoneAfterUpdate(t *testing.T) {
	ctx := context.Background()
	inner := &failingRepository{TicketRepository: memory.New().Ticket()}
	uc := usecase.New(&repoWith{ticket: inner}, usecase.WithIDGenerator(sequenceIDs("AAAA")))

	_, err := uc.Ticket.Create(ctx, validRequest())
	gt.NoError(t, err).Required()
	_, err = uc.Ticket.BatchUpdate(ctx, []model.TicketEdit{{ID: "AAAA", Status: "RESOLVED"}})
	gt.NoError(t, err).Required()

	inner.missing = true
	reopened, err := uc.Ticket.Reopen(ctx, "AAAA", "staff")
	gt.Error(t, err).Is(model.ErrTicketNotFound)
	gt.Value(t, reopened).Nil()
}

func TestTicketBatchUpdate_MalformedIDsSkipped(t *testing.T) {
	ctx := context.Background()
	uc := newTicketFixture(t, "AAAA")

	n, err := uc.Ticket.BatchUpdate(ctx, []model.TicketEdit{
		{ID: "", Status: "REJECTED"},
		{ID: "A/B", Status: "REJECTED"},
		{ID: "aaaa", Status: "RESOLVED"},
	})
	gt.NoError(t, err).Required()
	gt.Number(t, n).Equal(1)

	got, err := uc.Ticket.Get(ctx, "AAAA")
	gt.NoError(t, err).Required()
	gt.Value(t, got.Status).Equal(types.TicketStatusResolved)
}
