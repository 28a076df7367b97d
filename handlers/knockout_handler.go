package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-console/middleware"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/services"
)

type KnockoutHandler struct {
	knockoutService services.KnockoutService
}

func NewKnockoutHandler(knockoutService services.KnockoutService) *KnockoutHandler {
	return &KnockoutHandler{knockoutService: knockoutService}
}

func (h *KnockoutHandler) Check(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	check, err := h.knockoutService.Check(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"knockout": check}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *KnockoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		TeamsPerPool  int  `json:"teams_per_pool"`
		IncludeSecond bool `json:"include_second_place"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	req := models.KnockoutRequest{
		TournamentID:  tournamentID,
		TeamsPerPool:  input.TeamsPerPool,
		IncludeSecond: input.IncludeSecond,
	}
	if err := h.knockoutService.Create(r.Context(), middleware.GetSessionIDFromContext(r.Context()), req); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"knockout": req}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *KnockoutHandler) CreateFromMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		MatchIDs []models.ID `json:"match_ids"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	req := models.KnockoutFromMatchesRequest{TournamentID: tournamentID, MatchIDs: input.MatchIDs}
	if err := h.knockoutService.CreateFromMatches(r.Context(), middleware.GetSessionIDFromContext(r.Context()), req); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"knockout": req}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *KnockoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.knockoutService.Delete(r.Context(), middleware.GetSessionIDFromContext(r.Context()), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *KnockoutHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.knockoutService.Bracket(r.Context(), middleware.GetSessionIDFromContext(r.Context()), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
