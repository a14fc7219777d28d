package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// Identity is the verified set of account attributes carried by a
// request's token. The zero value is the anonymous identity.
type Identity struct {
	AccountID string
	Username  string
	Email     string
}

func (i Identity) IsAnonymous() bool {
	return i.AccountID == ""
}

type contextKey string

const identityKey = contextKey("identity")

// IdentityFromRequest derives the caller's identity from the request's
// Authorization header. A missing header yields the anonymous identity
// with no error; a header that is not of the form "Bearer <token>", or
// a token that fails verification, yields ErrInvalidToken.
func (ts *TokenService) IdentityFromRequest(r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Identity{}, nil
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return Identity{}, ErrInvalidToken
	}

	claims, err := ts.Verify(token)
	if err != nil {
		return Identity{}, err
	}

	return Identity{AccountID: claims.Subject, Username: claims.Username, Email: claims.Email}, nil
}

// RequireAuth rejects requests without a valid identity and makes the
// resolved identity available to next through the request context.
func (ts *TokenService) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := ts.IdentityFromRequest(r)
		if err == nil && identity.IsAnonymous() {
			err = ErrTokenRequired
		}
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), identity)))
	})
}

// NewContext returns a copy of ctx carrying identity.
func NewContext(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity stored by RequireAuth, or
// the anonymous identity when none was stored.
func IdentityFromContext(ctx context.Context) Identity {
	identity, _ := ctx.Value(identityKey).(Identity)
	return identity
}
