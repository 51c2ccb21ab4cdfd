// Package auth issues and validates the tokens that back user sessions and
// verifies Google sign-in credentials.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "newspulse"

// DefaultSessionDuration matches the backend's 7 day session rows.
const DefaultSessionDuration = 7 * 24 * time.Hour

// TokenService signs and verifies the HS256 tokens handed to clients. The
// same token string is also persisted as the session row's opaque token, so
// a token must pass both the signature check and the session lookup.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
}

func NewTokenService(secret string, lifetime time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if lifetime <= 0 {
		lifetime = DefaultSessionDuration
	}
	return &TokenService{secret: []byte(secret), lifetime: lifetime}, nil
}

// Generate creates a signed token for the given user ID and returns it with
// its absolute expiry.
func (s *TokenService) Generate(userID int) (string, time.Time, error) {
	return s.GenerateWithDuration(userID, s.lifetime)
}

// GenerateWithDuration issues a token with a custom lifetime. Tests use it to
// mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID int, d time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(d)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		Issuer:    issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate checks the signature and registered claims and returns the user ID
// carried in the subject. It does not consult the session store; callers do
// that lookup separately.
func (s *TokenService) Validate(tokenStr string) (int, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("auth: token expired")
		}
		return 0, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, errors.New("auth: invalid token claims")
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, fmt.Errorf("auth: token subject is not a user id: %w", err)
	}

	return userID, nil
}
