package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/utils/errutil"
	"github.com/unihelpdesk/helpdesk/pkg/utils/safe"
)

func withActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func actorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey).(string); ok {
		return v
	}
	return "staff"
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(model.ErrInvalidRequest, "malformed request body", goerr.V("cause", err.Error()))
	}
	return nil
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrIdentityExhausted):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrDataSource), errors.Is(err, model.ErrEmbedding):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	errutil.HandleHTTP(ctx, w, err, statusFor(err))
}

// ticketStatusView is what a requester sees when checking on a ticket
type ticketStatusView struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
}

func toStatusView(t *model.Ticket) ticketStatusView {
	return ticketStatusView{
		ID:          t.ID.String(),
		CreatedAt:   t.CreatedAt,
		Category:    string(t.Category),
		Status:      t.Status.String(),
		StatusLabel: t.Status.Label(),
	}
}

// ticketView is the full row for staff
type ticketView struct {
	ticketStatusView
	UpdatedAt time.Time `json:"updated_at"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Issue     string    `json:"issue"`
}

func toView(t *model.Ticket) ticketView {
	return ticketView{
		ticketStatusView: toStatusView(t),
		UpdatedAt:        t.UpdatedAt,
		Role:             string(t.Role),
		Name:             t.RequesterName,
		Email:            t.RequesterEmail,
		Issue:            t.Issue,
	}
}
