package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-console/models"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 12 * time.Hour

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	// ParseToken verifies a console token and returns its claims.
	ParseToken(token string) (*Claims, error)
	Logout(ctx context.Context, claims *Claims) error
}

type LoginInput struct {
	Operator string `json:"operator"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string                 `json:"token"`
	ExpiresAt time.Time              `json:"expires_at"`
	Session   *models.ConsoleSession `json:"session"`
}

// Claims identify the operator and the console session behind a request.
type Claims struct {
	Operator  string `json:"operator"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// AuthConfig holds the single console operator account.
type AuthConfig struct {
	Operator     string
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

type authService struct {
	cfg      AuthConfig
	sessions SessionService
	now      func() time.Time
}

func NewAuthService(cfg AuthConfig, sessions SessionService) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return &authService{cfg: cfg, sessions: sessions, now: time.Now}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Operator == "" || input.Password == "" {
		return nil, models.ValidationErrors{"credentials": "operator and password are required"}
	}
	if s.cfg.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	nameOK := subtle.ConstantTimeCompare([]byte(input.Operator), []byte(s.cfg.Operator)) == 1
	hashErr := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(input.Password))
	if !nameOK || hashErr != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Start(ctx, input.Operator)
	if err != nil {
		return nil, err
	}

	now := s.now()
	expires := now.Add(s.cfg.TokenTTL)
	claims := Claims{
		Operator:  input.Operator,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.Operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: expires, Session: session}, nil
}

func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if !token.Valid || claims.SessionID == "" || claims.Operator == "" {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

func (s *authService) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil {
		return ErrInvalidCredentials
	}
	return s.sessions.End(ctx, claims.SessionID)
}
