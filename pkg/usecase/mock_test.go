package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/unihelpdesk/helpdesk/pkg/domain/interfaces"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
)

// mockEmbedder maps known texts to fixed vectors
type mockEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float64
	err     error
	calls   int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.vectors[text]
	if !ok {
		return nil, errors.New("no vector for " + text)
	}
	return v, nil
}

func (m *mockEmbedder) Model() string { return "mock" }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockSource struct {
	pairs []model.KnowledgePair
	err   error
}

func (m *mockSource) Load(ctx context.Context) ([]model.KnowledgePair, error) {
	return m.pairs, m.err
}

func (m *mockSource) Name() string { return "mock.xlsx" }

type sentMessage struct {
	address string
	subject string
	body    string
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (m *mockNotifier) Notify(ctx context.Context, address, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{address: address, subject: subject, body: body})
	return nil
}

type mockAlerter struct {
	ch chan *model.Ticket
}

func (m *mockAlerter) TicketCreated(ctx context.Context, t *model.Ticket) error {
	m.ch <- t
	return nil
}

// failingRepository wraps a real repository and injects write failures
type failingRepository struct {
	interfaces.TicketRepository
	createErr error
	batchErr  error
	// missing makes Get report every ticket as absent
	missing bool
}

func (f *failingRepository) Get(ctx context.Context, id types.TicketID) (*model.Ticket, error) {
	if f.missing {
		return nil, nil
	}
	return f.TicketRepository.Get(ctx, id)
}

func (f *failingRepository) Create(ctx context.Context, t *model.Ticket) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.TicketRepository.Create(ctx, t)
}

func (f *failingRepository) BatchUpdate(ctx context.Context, changes []model.TicketChange, apply model.ApplyFunc) (int, error) {
	if f.batchErr != nil {
		return 0, f.batchErr
	}
	return f.TicketRepository.BatchUpdate(ctx, changes, apply)
}

type repoWith struct {
	ticket interfaces.TicketRepository
}

func (r *repoWith) Ticket() interfaces.TicketRepository { return r.ticket }
func (r *repoWith) Close() error                        { return nil }

// sequenceIDs returns ids in order, then repeats the last one
func sequenceIDs(ids ...types.TicketID) func() types.TicketID {
	var mu sync.Mutex
	i := 0
	return func() types.TicketID {
		mu.Lock()
		defer mu.Unlock()
		id := ids[min(i, len(ids)-1)]
		i++
		return id
	}
}
