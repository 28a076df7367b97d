package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dosada05/tournament-console/apiclient"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/services"
	"github.com/Dosada05/tournament-console/views"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	writeEnvelope(w, r, status, jsonResponse{"error": message})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env jsonResponse) {
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write JSON response", "error", err, "path", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		"error", err, "method", r.Method, "path", r.URL.Path)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func upstreamErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.WarnContext(r.Context(), "tournament api unavailable", "error", err, "path", r.URL.Path)
	errorResponse(w, r, http.StatusBadGateway, "the tournament service could not be reached, please retry")
}

// mapServiceErrorToHTTP translates service, view and API client errors into
// HTTP responses. Messages from the tournament API are passed through as-is.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation models.ValidationErrors
		apiErr     *apiclient.APIError
	)

	switch {
	case errors.As(err, &validation):
		failedValidationResponse(w, r, validation)

	case errors.Is(err, services.ErrFinalizeConflict):
		writeEnvelope(w, r, http.StatusConflict, jsonResponse{
			"error":             err.Error(),
			"requires_override": true,
		})

	case errors.Is(err, views.ErrReorderReverted):
		reorderRevertedResponse(w, r, err, views.ReorderResult{Outcome: views.OutcomeReverted})

	case errors.Is(err, services.ErrInvalidStandingsKind),
		errors.Is(err, services.ErrInvalidExportKind),
		errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrNoTournament),
		errors.Is(err, views.ErrNoTournament):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrSessionExpired):
		unauthorizedResponse(w, r, err.Error())

	case errors.Is(err, views.ErrStaleResponse),
		errors.Is(err, views.ErrReorderInProgress),
		errors.Is(err, views.ErrMatchNotOnCourt):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrExportsDisabled):
		errorResponse(w, r, http.StatusServiceUnavailable, err.Error())

	case errors.As(err, &apiErr):
		errorResponse(w, r, apiErr.Status, apiErr.Message)

	case errors.Is(err, apiclient.ErrTransport),
		errors.Is(err, apiclient.ErrInvalidPayload):
		upstreamErrorResponse(w, r, err)

	case errors.Is(err, services.ErrNotFound):
		notFoundResponse(w, r)

	default:
		serverErrorResponse(w, r, err)
	}
}

// getIDFromURL reads an opaque id path parameter.
func getIDFromURL(r *http.Request, paramName string) (models.ID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, paramName))
	if raw == "" {
		return "", fmt.Errorf("missing %s in URL path", paramName)
	}
	return models.ID(raw), nil
}

func getPositiveIntFromURL(r *http.Request, paramName string) (int, error) {
	raw := chi.URLParam(r, paramName)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q must be a positive integer", paramName, raw)
	}
	return n, nil
}
