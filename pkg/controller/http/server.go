package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unihelpdesk/helpdesk/pkg/usecase"
	"golang.org/x/time/rate"
)

type Server struct {
	router      *chi.Mux
	uc          *usecase.UseCases
	staffSecret string
	ticketRate  rate.Limit
	ticketBurst int
	maxBody     int64
}

type Options func(*Server)

// WithStaffSecret enables the staff API. Without it every staff route
// answers 403.
func WithStaffSecret(secret string) Options {
	return func(s *Server) {
		s.staffSecret = secret
	}
}

// WithTicketRateLimit bounds ticket submissions per client address
func WithTicketRateLimit(perMinute float64, burst int) Options {
	return func(s *Server) {
		s.ticketRate = rate.Limit(perMinute / 60)
		s.ticketBurst = burst
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:      r,
		uc:          uc,
		ticketRate:  rate.Every(10 * time.Second),
		ticketBurst: 5,
		maxBody:     1 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(limitBody(s.maxBody))

		r.Post("/ask", s.askHandler)
		r.Get("/taxonomy", s.taxonomyHandler)
		r.Get("/tickets/{id}", s.ticketStatusHandler)
		r.With(rateLimit(newClientLimiter(s.ticketRate, s.ticketBurst))).
			Post("/tickets", s.createTicketHandler)

		r.Route("/staff", func(r chi.Router) {
			r.Use(staffAuth(s.staffSecret))

			r.Get("/tickets", s.listTicketsHandler)
			r.Patch("/tickets", s.batchUpdateHandler)
			r.Post("/tickets/{id}/reopen", s.reopenHandler)
			r.Get("/stats", s.statsHandler)
			r.Post("/knowledge/reload", s.reloadKnowledgeHandler)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
