package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(standingsService services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: standingsService}
}

// Get returns one table; kind is pool (default), overall or second-place.
func (h *StandingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	kind := models.StandingsKind(r.URL.Query().Get("kind"))

	standings, err := h.standingsService.Get(r.Context(), tournamentID, kind)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if kind == "" {
		kind = models.StandingsPool
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{
		"kind":      kind,
		"standings": standings,
	}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StandingsHandler) All(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	set, err := h.standingsService.All(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": set}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
