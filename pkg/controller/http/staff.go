package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
)

type listTicketsResponse struct {
	Tickets []ticketView `json:"tickets"`
}

func (s *Server) listTicketsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	includeClosed, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	tickets, err := s.uc.Ticket.List(ctx, model.TicketFilter{IncludeClosed: includeClosed})
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	resp := listTicketsResponse{Tickets: make([]ticketView, len(tickets))}
	for i, t := range tickets {
		resp.Tickets[i] = toView(t)
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

type statsResponse struct {
	Pending int `json:"pending"`
	Total   int `json:"total"`
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.uc.Ticket.Stats(ctx)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, statsResponse{Pending: stats.Pending, Total: stats.Total})
}

type ticketEditRequest struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Category string `json:"category"`
}

type batchUpdateRequest struct {
	Edits []ticketEditRequest `json:"edits"`
}

type batchUpdateResponse struct {
	Changed int `json:"changed"`
}

func (s *Server) batchUpdateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req batchUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	edits := make([]model.TicketEdit, len(req.Edits))
	for i, e := range req.Edits {
		edits[i] = model.TicketEdit{ID: e.ID, Status: e.Status, Category: e.Category}
	}

	n, err := s.uc.Ticket.BatchUpdate(ctx, edits)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, batchUpdateResponse{Changed: n})
}

func (s *Server) reopenHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticket, err := s.uc.Ticket.Reopen(ctx, chi.URLParam(r, "id"), actorFrom(ctx))
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toView(ticket))
}

type reloadResponse struct {
	Source   string `json:"source"`
	Entries  int    `json:"entries"`
	LoadedAt string `json:"loaded_at"`
}

func (s *Server) reloadKnowledgeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idx, err := s.uc.Knowledge.Reload(ctx)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, reloadResponse{
		Source:   idx.Source(),
		Entries:  idx.Len(),
		LoadedAt: idx.LoadedAt().Format(time.RFC3339),
	})
}
