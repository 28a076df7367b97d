package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/tournament-console/models"
	"github.com/Dosada05/tournament-console/services"
)

type TokenParser interface {
	ParseToken(token string) (*services.Claims, error)
}

// SessionLookup confirms that the session named by a token still exists.
type SessionLookup interface {
	Current(ctx context.Context, sessionID string) (*models.ConsoleSession, error)
}

// Authenticate requires a console token. Browsers cannot set headers on a
// websocket handshake, so the token is also accepted as ?token=.
func Authenticate(parser TokenParser, sessions SessionLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing authentication token")
				return
			}

			claims, err := parser.ParseToken(token)
			if err != nil {
				if errors.Is(err, services.ErrSessionExpired) {
					writeError(w, http.StatusUnauthorized, services.ErrSessionExpired.Error())
					return
				}
				logger.DebugContext(r.Context(), "rejected console token", "error", err)
				writeError(w, http.StatusUnauthorized, "invalid authentication token")
				return
			}

			if sessions != nil {
				if _, err := sessions.Current(r.Context(), claims.SessionID); err != nil {
					if errors.Is(err, services.ErrSessionExpired) {
						writeError(w, http.StatusUnauthorized, services.ErrSessionExpired.Error())
						return
					}
					logger.ErrorContext(r.Context(), "failed to look up console session", "session_id", claims.SessionID, "error", err)
					writeError(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
