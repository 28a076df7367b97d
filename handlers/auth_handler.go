package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/tournament-console/middleware"
	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// @Summary Operator login
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput

	err := readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	input.Operator = strings.TrimSpace(input.Operator)
	if input.Operator == "" || input.Password == "" {
		failedValidationResponse(w, r, models.ValidationErrors{
			"operator": "operator and password are required",
		})
		return
	}

	result, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"session":    result.Session,
	}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, err := middleware.GetClaimsFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.authService.Logout(r.Context(), claims); err != nil {
		if errors.Is(err, services.ErrSessionExpired) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
