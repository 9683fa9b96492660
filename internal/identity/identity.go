// Package identity exposes the current-user context external interface
// (spec §6 "Identity"): a user id and email decoded from a bearer token and
// carried through the rest of the call via context.Context.
package identity

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CurrentUser carries the authenticated caller's identity.
type CurrentUser struct {
	UserID uuid.UUID
	Email  string
}

type contextKey struct{}

var currentUserKey = contextKey{}

// WithCurrentUser returns a context carrying the given user.
func WithCurrentUser(ctx context.Context, u CurrentUser) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// FromContext extracts the current user previously attached with
// WithCurrentUser. ok is false if no identity is present.
func FromContext(ctx context.Context) (CurrentUser, bool) {
	u, ok := ctx.Value(currentUserKey).(CurrentUser)
	return u, ok
}

// claims is the JWT payload carrying user id and email.
type claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Decoder verifies bearer tokens and resolves them to a CurrentUser.
type Decoder struct {
	secret []byte
}

// NewDecoder builds a Decoder with the given HMAC signing secret.
func NewDecoder(secret string) *Decoder {
	return &Decoder{secret: []byte(secret)}
}

// Decode validates tokenString and extracts the CurrentUser it carries.
func (d *Decoder) Decode(tokenString string) (CurrentUser, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return d.secret, nil
	})
	if err != nil {
		return CurrentUser{}, fmt.Errorf("decode identity token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return CurrentUser{}, fmt.Errorf("invalid identity token")
	}

	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return CurrentUser{}, fmt.Errorf("invalid user id in token: %w", err)
	}

	return CurrentUser{UserID: userID, Email: c.Email}, nil
}
