package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// matchOutcomes counts match decisions.
	// Labels: outcome (answered, unanswered, empty_index, error)
	matchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "helpdesk",
		Subsystem: "match",
		Name:      "outcomes_total",
		Help:      "Match decisions by outcome",
	}, []string{"outcome"})

	matchScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "helpdesk",
		Subsystem: "match",
		Name:      "best_score",
		Help:      "Best cosine similarity per scored query",
		Buckets:   []float64{0, 0.2, 0.4, 0.5, 0.55, 0.6, 0.65, 0.7, 0.8, 0.9, 1},
	})

	knowledgeEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "helpdesk",
		Subsystem: "knowledge",
		Name:      "entries",
		Help:      "Entries in the active knowledge index",
	})

	// knowledgeReloads counts reload attempts.
	// Labels: result (ok, source_error, build_error)
	knowledgeReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "helpdesk",
		Subsystem: "knowledge",
		Name:      "reloads_total",
		Help:      "Knowledge index reloads by result",
	}, []string{"result"})

	ticketsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "helpdesk",
		Subsystem: "tickets",
		Name:      "created_total",
		Help:      "Tickets durably created",
	})

	ticketIDCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "helpdesk",
		Subsystem: "tickets",
		Name:      "id_collisions_total",
		Help:      "Generated ticket IDs that were already taken",
	})

	// notifications counts requester confirmations.
	// Labels: result (sent, failed)
	notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "helpdesk",
		Subsystem: "tickets",
		Name:      "notifications_total",
		Help:      "Requester confirmations by delivery result",
	}, []string{"result"})

	// batchUpdates counts staff batch submissions.
	// Labels: result (applied, rejected, failed)
	batchUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "helpdesk",
		Subsystem: "tickets",
		Name:      "batch_updates_total",
		Help:      "Staff batch updates by result",
	}, []string{"result"})
)
