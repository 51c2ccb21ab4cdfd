package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// Identity is the profile extracted from a verified sign-in credential.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier checks a third-party credential and returns the identity
// it asserts. Handlers depend on this interface so tests can substitute a
// fake verifier.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

// GoogleVerifier validates Google ID tokens against Google's public keys,
// including the audience check against our OAuth client ID.
type GoogleVerifier struct {
	audience string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{audience: clientID}
}

func (g *GoogleVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, credential, g.audience)
	if err != nil {
		return nil, fmt.Errorf("auth: verifying google id token: %w", err)
	}

	id := &Identity{
		Subject: payload.Subject,
		Email:   claimString(payload.Claims, "email"),
		Name:    claimString(payload.Claims, "name"),
		Picture: claimString(payload.Claims, "picture"),
	}

	if id.Subject == "" || id.Email == "" {
		return nil, errors.New("auth: google token payload missing subject or email")
	}

	return id, nil
}

func claimString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
