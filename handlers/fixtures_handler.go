package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/Dosada05/tournament-console/middleware"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/services"
)

type FixturesHandler struct {
	fixturesService services.FixturesService
}

func NewFixturesHandler(fixturesService services.FixturesService) *FixturesHandler {
	return &FixturesHandler{fixturesService: fixturesService}
}

// List godoc
// @Summary Normalized and filtered fixtures of a tournament
// @Router /api/tournaments/{tournamentID}/fixtures [get]
func (h *FixturesHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	q, verrs := parseFixturesQuery(r.URL.Query())
	if len(verrs) > 0 {
		failedValidationResponse(w, r, verrs)
		return
	}
	q.SessionID = middleware.GetSessionIDFromContext(r.Context())
	q.TournamentID = tournamentID

	page, err := h.fixturesService.Query(r.Context(), q)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixtures": page}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// parseFixturesQuery reads the screen filters. An absent parameter leaves
// its filter off; "pool=" selects matches outside any pool.
func parseFixturesQuery(values url.Values) (services.FixturesQuery, models.ValidationErrors) {
	var q services.FixturesQuery
	verrs := models.ValidationErrors{}

	q.Round = values.Get("round")
	if values.Has("pool") {
		pool := values.Get("pool")
		q.Pool = &pool
	}
	q.Status = models.MatchStatusValue(values.Get("status"))

	if raw := values.Get("court"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			verrs["court"] = "must be a positive integer"
		} else {
			q.Court = &n
		}
	}

	if raw := values.Get("has_court"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			verrs["has_court"] = "must be a boolean"
		} else {
			q.HasCourt = &b
		}
	}

	q.Ready = queryFlag(values, "ready", verrs)
	q.Refresh = queryFlag(values, "refresh", verrs)

	switch values.Get("group_by") {
	case "":
	case "court":
		q.GroupByCourt = true
	default:
		verrs["group_by"] = `must be "court"`
	}

	return q, verrs
}

func queryFlag(values url.Values, key string, verrs models.ValidationErrors) bool {
	raw := values.Get(key)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		verrs[key] = "must be a boolean"
		return false
	}
	return b
}
