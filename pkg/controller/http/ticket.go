package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/domain/types"
)

type createTicketRequest struct {
	Category string `json:"category"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Issue    string `json:"issue"`
}

type createTicketResponse struct {
	Ticket   ticketStatusView `json:"ticket"`
	Notified bool             `json:"notified"`
}

func (s *Server) createTicketHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createTicketRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	receipt, err := s.uc.Ticket.Create(ctx, model.TicketRequest{
		Category: req.Category,
		Role:     req.Role,
		Name:     req.Name,
		Email:    req.Email,
		Issue:    req.Issue,
	})
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, createTicketResponse{
		Ticket:   toStatusView(receipt.Ticket),
		Notified: receipt.Notified,
	})
}

func (s *Server) ticketStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	ticket, err := s.uc.Ticket.Get(ctx, id)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	if ticket == nil {
		handleError(ctx, w, goerr.Wrap(model.ErrTicketNotFound, "no such ticket", goerr.V(model.TicketIDKey, id)))
		return
	}

	writeJSON(ctx, w, http.StatusOK, toStatusView(ticket))
}

type taxonomyResponse struct {
	Categories []string `json:"categories"`
	Roles      []string `json:"roles"`
	Statuses   []string `json:"statuses"`
}

func (s *Server) taxonomyHandler(w http.ResponseWriter, r *http.Request) {
	tax := s.uc.Taxonomy()
	resp := taxonomyResponse{
		Categories: make([]string, 0, len(tax.Categories)),
		Roles:      make([]string, 0, len(tax.Roles)),
	}
	for _, c := range tax.Categories {
		resp.Categories = append(resp.Categories, string(c))
	}
	for _, role := range tax.Roles {
		resp.Roles = append(resp.Roles, string(role))
	}
	for _, st := range types.AllTicketStatuses() {
		resp.Statuses = append(resp.Statuses, st.String())
	}
	writeJSON(r.Context(), w, http.StatusOK, resp)
}
