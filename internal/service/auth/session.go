package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/config"
)

// Claims carries the validated contents of a session token.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// SessionService manages the single user's session tokens. There are no
// accounts to look up: the configured password hash is the sole credential,
// and a valid token is the sole proof of a session.
type SessionService interface {
	// Login verifies the password against the configured hash and issues a
	// signed session token. Returns ErrInvalidCredentials on mismatch.
	Login(ctx context.Context, password string) (string, error)

	// ValidateToken validates a session token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, or ErrInvalidToken on
	// failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// hmacSessionService implements SessionService using HMAC-SHA256 signing.
type hmacSessionService struct {
	signingKey    []byte
	passwordHash  string
	verifier      PasswordVerifier
	tokenLifetime time.Duration
	timeFunc      func() time.Time
	clockSkew     time.Duration
}

// Ensure hmacSessionService implements SessionService interface
var _ SessionService = (*hmacSessionService)(nil)

// NewSessionService creates a session service from the auth configuration.
func NewSessionService(cfg config.AuthConfig, verifier PasswordVerifier) (SessionService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	if cfg.PasswordHash == "" {
		return nil, fmt.Errorf("password hash cannot be empty")
	}
	if verifier == nil {
		verifier = NewBcryptVerifier()
	}

	lifetime := time.Duration(cfg.TokenLifetimeHours) * time.Hour
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}

	return &hmacSessionService{
		signingKey:    []byte(cfg.JWTSecret),
		passwordHash:  cfg.PasswordHash,
		verifier:      verifier,
		tokenLifetime: lifetime,
		timeFunc:      time.Now,
		clockSkew:     2 * time.Minute,
	}, nil
}

// Login implements SessionService.Login
func (s *hmacSessionService) Login(ctx context.Context, password string) (string, error) {
	if err := s.verifier.Compare(s.passwordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.timeFunc()
	claims := jwt.RegisteredClaims{
		Subject:   "owner",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenLifetime)),
		ID:        uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// ValidateToken implements SessionService.ValidateToken
func (s *hmacSessionService) ValidateToken(
	ctx context.Context,
	tokenString string,
) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	now := s.timeFunc()
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		default:
			return nil, ErrInvalidToken
		}
	}

	registered, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		Subject: registered.Subject,
		ID:      registered.ID,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}

	return claims, nil
}
