package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-console/middleware"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/services"
)

type MatchHandler struct {
	scoreService services.ScoreService
}

func NewMatchHandler(scoreService services.ScoreService) *MatchHandler {
	return &MatchHandler{scoreService: scoreService}
}

// UpdateScore godoc
// @Summary Record a score, optionally finalizing the match
// @Router /api/tournaments/{tournamentID}/matches/{matchID}/score [post]
func (h *MatchHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Score    string `json:"score"`
		Final    bool   `json:"final"`
		Override bool   `json:"override"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	update := models.ScoreUpdate{
		TournamentID: tournamentID,
		MatchID:      matchID,
		Score:        input.Score,
		Final:        input.Final,
		Override:     input.Override,
	}
	if err := h.scoreService.UpdateScore(r.Context(), middleware.GetSessionIDFromContext(r.Context()), update); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"score": update}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status models.MatchStatusValue `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	update := models.StatusUpdate{TournamentID: tournamentID, Status: input.Status}
	if err := h.scoreService.UpdateStatus(r.Context(), middleware.GetSessionIDFromContext(r.Context()), matchID, update); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{
		"match_id": matchID,
		"status":   update.Status,
	}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
