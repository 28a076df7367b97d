package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/tournament-console/middleware"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/services"
	"github.com/go-chi/chi/v5"
)

const maxExportsListed = 100

type ExportHandler struct {
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

func (h *ExportHandler) Create(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	export, err := h.exportService.Export(r.Context(), services.ExportInput{
		TournamentID: tournamentID,
		Kind:         models.ExportKind(chi.URLParam(r, "kind")),
		Operator:     middleware.GetOperatorFromContext(r.Context()),
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"export": export}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ExportHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxExportsListed {
			failedValidationResponse(w, r, models.ValidationErrors{
				"limit": "must be between 1 and " + strconv.Itoa(maxExportsListed),
			})
			return
		}
	}

	exports, err := h.exportService.List(r.Context(), tournamentID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"exports": exports}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
