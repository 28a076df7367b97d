package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-console/middleware"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/services"
)

type SessionHandler struct {
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.Current(r.Context(), middleware.GetSessionIDFromContext(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) SelectTournament(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TournamentID models.ID `json:"tournament_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TournamentID.IsZero() {
		failedValidationResponse(w, r, models.ValidationErrors{"tournament_id": "is required"})
		return
	}

	session, err := h.sessionService.SelectTournament(r.Context(), middleware.GetSessionIDFromContext(r.Context()), input.TournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ClearTournament is the "change tournament" action: the session goes back
// to the tournament picker and its cached fixtures are dropped.
func (h *SessionHandler) ClearTournament(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessionService.ClearTournament(r.Context(), middleware.GetSessionIDFromContext(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
