package sqlite

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const ticketColumns = "id, created_at, updated_at, category, role, name, email, issue, status"

type ticketRepository struct {
	pool *pool
}

func newTicketRepository(p *pool) *ticketRepository {
	return &ticketRepository{pool: p}
}

// Create relies on the primary key for insert-if-absent; concurrent creators
// racing on the same ID see exactly one success.
func (r *ticketRepository) Create(ctx context.Context, t *model.Ticket) error {
	conn, err := r.pool.take(ctx)
	if err != nil {
		return err
	}
	defer r.pool.put(conn)

	err = sqlitex.Execute(conn,
		"INSERT INTO tickets ("+ticketColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{
				string(t.ID),
				t.CreatedAt.UnixNano(),
				t.UpdatedAt.UnixNano(),
				string(t.Category),
				string(t.Role),
				t.RequesterName,
				t.RequesterEmail,
				t.Issue,
				string(t.Status),
			},
		})
	if err != nil {
		if sqlite.ErrCode(err) == sqlite.ResultConstraintPrimaryKey {
			return goerr.Wrap(model.ErrTicketIDConflict, "ticket already exists", goerr.V(model.TicketIDKey, t.ID))
		}
		return goerr.Wrap(err, "failed to insert ticket", goerr.V(model.TicketIDKey, t.ID))
	}
	return nil
}

func (r *ticketRepository) Get(ctx context.Context, id types.TicketID) (*model.Ticket, error) {
	conn, err := r.pool.take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.put(conn)

	return getTicket(conn, id)
}

func (r *ticketRepository) List(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, error) {
	conn, err := r.pool.take(ctx)
	if err != nil {
		return nil, err
	}
	defer r.pool.put(conn)

	query := "SELECT " + ticketColumns + " FROM tickets ORDER BY created_at, id"
	var args []any
	if !filter.IncludeClosed {
		query = "SELECT " + ticketColumns + " FROM tickets WHERE status = ? ORDER BY created_at, id"
		args = append(args, string(types.TicketStatusPending))
	}

	tickets := []*model.Ticket{}
	err = sqlitex.Execute(conn, query,
		&sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				tickets = append(tickets, scanTicket(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tickets")
	}
	return tickets, nil
}

// BatchUpdate holds the write lock for the whole batch (BEGIN IMMEDIATE), so
// the rows apply sees cannot change underneath it.
func (r *ticketRepository) BatchUpdate(ctx context.Context, changes []model.TicketChange, apply model.ApplyFunc) (n int, err error) {
	conn, err := r.pool.take(ctx)
	if err != nil {
		return 0, err
	}
	defer r.pool.put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to begin transaction")
	}
	defer endTransaction(&err)

	original := make(map[types.TicketID]model.Ticket)
	staged := make(map[types.TicketID]*model.Ticket)
	var order []types.TicketID

	for _, change := range changes {
		current, ok := staged[change.ID]
		if !ok {
			stored, err := getTicket(conn, change.ID)
			if err != nil {
				return 0, err
			}
			if stored == nil {
				continue
			}
			original[change.ID] = *stored
			current = stored
			order = append(order, change.ID)
		}

		if err := apply(current, change); err != nil {
			return 0, goerr.Wrap(err, "batch update aborted", goerr.V(model.TicketIDKey, change.ID))
		}
		staged[change.ID] = current
	}

	for _, id := range order {
		t := staged[id]
		if *t == original[id] {
			continue
		}
		err := sqlitex.Execute(conn,
			"UPDATE tickets SET status = ?, category = ?, updated_at = ? WHERE id = ?",
			&sqlitex.ExecOptions{
				Args: []any{string(t.Status), string(t.Category), t.UpdatedAt.UnixNano(), string(t.ID)},
			})
		if err != nil {
			return 0, goerr.Wrap(err, "failed to update ticket", goerr.V(model.TicketIDKey, id))
		}
		n++
	}

	return n, nil
}

func getTicket(conn *sqlite.Conn, id types.TicketID) (*model.Ticket, error) {
	var found *model.Ticket
	err := sqlitex.Execute(conn,
		"SELECT "+ticketColumns+" FROM tickets WHERE id = ?",
		&sqlitex.ExecOptions{
			Args: []any{string(id)},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = scanTicket(stmt)
				return nil
			},
		})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get ticket", goerr.V(model.TicketIDKey, id))
	}
	return found, nil
}

// scanTicket reads a row selected with ticketColumns
func scanTicket(stmt *sqlite.Stmt) *model.Ticket {
	return &model.Ticket{
		ID:             types.TicketID(stmt.ColumnText(0)),
		CreatedAt:      time.Unix(0, stmt.ColumnInt64(1)).UTC(),
		UpdatedAt:      time.Unix(0, stmt.ColumnInt64(2)).UTC(),
		Category:       types.Category(stmt.ColumnText(3)),
		Role:           types.Role(stmt.ColumnText(4)),
		RequesterName:  stmt.ColumnText(5),
		RequesterEmail: stmt.ColumnText(6),
		Issue:          stmt.ColumnText(7),
		Status:         types.TicketStatus(stmt.ColumnText(8)),
	}
}
