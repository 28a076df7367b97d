package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-console/apiclient"
	"github.com/Dosada05/tournament-console/middleware"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/services"
	"github.com/Dosada05/tournament-console/views"
)

type CourtHandler struct {
	courtService services.CourtService
}

func NewCourtHandler(courtService services.CourtService) *CourtHandler {
	return &CourtHandler{courtService: courtService}
}

func (h *CourtHandler) Assign(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input models.CourtAssignment
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	assignment, err := h.courtService.Assign(r.Context(), middleware.GetSessionIDFromContext(r.Context()), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"assignment": assignment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Reorder godoc
// @Summary Move one queued match onto another's slot on the same court
// @Router /api/tournaments/{tournamentID}/courts/{court}/reorder [post]
func (h *CourtHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	court, err := getPositiveIntFromURL(r, "court")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		ActiveID models.ID `json:"active_id"`
		OverID   models.ID `json:"over_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.courtService.Reorder(r.Context(), services.ReorderInput{
		SessionID:    middleware.GetSessionIDFromContext(r.Context()),
		TournamentID: tournamentID,
		Court:        court,
		ActiveID:     input.ActiveID,
		OverID:       input.OverID,
	})
	if errors.Is(err, views.ErrReorderReverted) {
		reorderRevertedResponse(w, r, err, result)
		return
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"reorder": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// reorderRevertedResponse reports a rejected reorder together with the
// court order refetched from the API, which the console must show instead
// of its optimistic one.
func reorderRevertedResponse(w http.ResponseWriter, r *http.Request, err error, result views.ReorderResult) {
	status := http.StatusBadGateway
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.Status
	}
	writeEnvelope(w, r, status, jsonResponse{
		"error":    apiclient.Message(err),
		"reverted": true,
		"reorder":  result,
	})
}
