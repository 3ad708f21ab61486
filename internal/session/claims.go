package session

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields of the backend's access token used by the dashboard.
// The backend has issued tokens with either an "id" or a "userId" claim.
type Claims struct {
	ID     int    `json:"id,omitempty"`
	UserID int    `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AccountID returns the numeric user id carried by the token, falling back to a numeric subject claim
func (c *Claims) AccountID() int {
	if c.UserID != 0 {
		return c.UserID
	}
	if c.ID != 0 {
		return c.ID
	}
	if id, err := strconv.Atoi(c.Subject); err == nil {
		return id
	}
	return 0
}

// ParseClaims decodes the token claims without verifying the signature.
// The token is opaque to the dashboard - this is only used to look up the signed in user's id,
// the backend remains responsible for validating the token and its expiry.
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("no token")
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := &Claims{}

	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("could not decode token claims: %w", err)
	}
	return claims, nil
}
