package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

// TokenClaims are the claims the backend puts into its bearer tokens.
// They are decoded without signature verification and serve as display
// hints only; the backend re-verifies the token on every call.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	TenantID string `json:"tenantId,omitempty"`
}

// SubjectID returns the user id, preferring the backend's "id" claim over "sub".
func (c *TokenClaims) SubjectID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// DecodeToken extracts claims from a bearer token without verifying its
// signature or expiry.
func DecodeToken(tokenString string) (*TokenClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, domain.ErrMissingToken
	}

	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, domain.ErrInvalidToken
	}

	if claims.SubjectID() == "" {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}
