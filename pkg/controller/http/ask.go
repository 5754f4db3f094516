package http

import (
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unihelpdesk/helpdesk/pkg/domain/model"
	"github.com/unihelpdesk/helpdesk/pkg/utils/errutil"
)

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answered        bool    `json:"answered"`
	Answer          string  `json:"answer,omitempty"`
	MatchedQuestion string  `json:"matched_question,omitempty"`
	Score           float64 `json:"score"`
	// Fallback is set when matching failed; the client should offer a ticket
	Fallback bool `json:"fallback,omitempty"`
}

func (s *Server) askHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		handleError(ctx, w, goerr.Wrap(model.ErrInvalidRequest, "question is required"))
		return
	}

	result, err := s.uc.Match.Match(ctx, question)
	if err != nil {
		// matching failure must never block escalation
		_ = errutil.Handle(ctx, err, "match failed, falling back to ticket")
		writeJSON(ctx, w, http.StatusOK, askResponse{Fallback: true})
		return
	}

	writeJSON(ctx, w, http.StatusOK, askResponse{
		Answered:        result.Answered,
		Answer:          result.Answer,
		MatchedQuestion: result.MatchedQuestion,
		Score:           result.Score,
	})
}
