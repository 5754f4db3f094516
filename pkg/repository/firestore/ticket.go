package firestore

import (
	"cmp"
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ticketDoc is the Firestore document representation of model.Ticket
type ticketDoc struct {
	ID             string    `firestore:"ID"`
	CreatedAt      time.Time `firestore:"CreatedAt"`
	UpdatedAt      time.Time `firestore:"UpdatedAt"`
	Category       string    `firestore:"Category"`
	Role           string    `firestore:"Role"`
	RequesterName  string    `firestore:"RequesterName"`
	RequesterEmail string    `firestore:"RequesterEmail"`
	Issue          string    `firestore:"Issue"`
	Status         string    `firestore:"Status"`
}

func toTicketDoc(t *model.Ticket) *ticketDoc {
	return &ticketDoc{
		ID:             string(t.ID),
		CreatedAt:      t.CreatedAt.UTC(),
		UpdatedAt:      t.UpdatedAt.UTC(),
		Category:       string(t.Category),
		Role:           string(t.Role),
		RequesterName:  t.RequesterName,
		RequesterEmail: t.RequesterEmail,
		Issue:          t.Issue,
		Status:         string(t.Status),
	}
}

func (d *ticketDoc) toModel() *model.Ticket {
	return &model.Ticket{
		ID:             types.TicketID(d.ID),
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
		Category:       types.Category(d.Category),
		Role:           types.Role(d.Role),
		RequesterName:  d.RequesterName,
		RequesterEmail: d.RequesterEmail,
		Issue:          d.Issue,
		Status:         types.TicketStatus(d.Status),
	}
}

type ticketRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTicketRepository(client *firestore.Client) *ticketRepository {
	return &ticketRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *ticketRepository) ticketsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_tickets"
	}
	return "tickets"
}

func (r *ticketRepository) doc(id types.TicketID) *firestore.DocumentRef {
	return r.client.Collection(r.ticketsCollection()).Doc(string(id))
}

// Create uses DocumentRef.Create, which fails with AlreadyExists instead of
// overwriting.
func (r *ticketRepository) Create(ctx context.Context, t *model.Ticket) error {
	if _, err := r.doc(t.ID).Create(ctx, toTicketDoc(t)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(model.ErrTicketIDConflict, "ticket already exists", goerr.V(model.TicketIDKey, t.ID))
		}
		return goerr.Wrap(err, "failed to create ticket", goerr.V(model.TicketIDKey, t.ID))
	}
	return nil
}

func (r *ticketRepository) Get(ctx context.Context, id types.TicketID) (*model.Ticket, error) {
	docSnap, err := r.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get ticket", goerr.V(model.TicketIDKey, id))
	}

	var doc ticketDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode ticket", goerr.V(model.TicketIDKey, id))
	}
	return doc.toModel(), nil
}

// List of pending tickets is served by the (Status, CreatedAt) composite
// index created by the migrate command.
func (r *ticketRepository) List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	query := r.client.Collection(r.ticketsCollection()).Query
	if !filter.IncludeClosed {
		query = query.Where("Status", "==", string(types.TicketStatusPending))
	}
	iter := query.OrderBy("CreatedAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	tickets := []*model.Ticket{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tickets")
		}

		var doc ticketDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode ticket", goerr.V(model.TicketIDKey, docSnap.Ref.ID))
		}
		tickets = append(tickets, doc.toModel())
	}

	// Firestore orders by CreatedAt only; break ties by ID like the other backends.
	slices.SortStableFunc(tickets, func(a, b *model.Ticket) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return tickets, nil
}

// BatchUpdate reads every referenced document first, applies the changes in
// memory, then writes. Firestore may retry the function on contention, so it
// rebuilds its state from scratch on every attempt.
func (r *ticketRepository) BatchUpdate(ctx context.Context, changes []model.TicketChange, apply model.ApplyFunc) (int, error) {
	var modified int

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		modified = 0

		var refs []*firestore.DocumentRef
		seen := make(map[types.TicketID]bool)
		for _, change := range changes {
			// Not a valid document name; it cannot refer to a stored ticket
			if change.ID.Validate() != nil {
				continue
			}
			if !seen[change.ID] {
				seen[change.ID] = true
				refs = append(refs, r.doc(change.ID))
			}
		}

		if len(refs) == 0 {
			return nil
		}

		snaps, err := tx.GetAll(refs)
		if err != nil {
			return goerr.Wrap(err, "failed to read tickets in transaction")
		}

		original := make(map[types.TicketID]model.Ticket)
		staged := make(map[types.TicketID]*model.Ticket)
		for _, snap := range snaps {
			if !snap.Exists() {
				continue
			}
			var doc ticketDoc
			if err := snap.DataTo(&doc); err != nil {
				return goerr.Wrap(err, "failed to decode ticket", goerr.V(model.TicketIDKey, snap.Ref.ID))
			}
			t := doc.toModel()
			original[t.ID] = *t
			staged[t.ID] = t
		}

		for _, change := range changes {
			current, ok := staged[change.ID]
			if !ok {
				continue
			}
			if err := apply(current, change); err != nil {
				return goerr.Wrap(err, "batch update aborted", goerr.V(model.TicketIDKey, change.ID))
			}
		}

		for _, ref := range refs {
			id := types.TicketID(ref.ID)
			t, ok := staged[id]
			if !ok || *t == original[id] {
				continue
			}
			if err := tx.Set(ref, toTicketDoc(t)); err != nil {
				return goerr.Wrap(err, "failed to write ticket", goerr.V(model.TicketIDKey, id))
			}
			modified++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return modified, nil
}
