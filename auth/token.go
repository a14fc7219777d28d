//Package auth issues and verifies the signed identity tokens that
// guard every account mutation, and resolves them into a per-request
// identity.
package auth

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = time.Hour

var (
	ErrMissingSigningKey = errors.New("signing key must not be empty")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrTokenRequired     = errors.New("authorization token required")
)

// Claims is the payload carried by an identity token. The account id
// lives in the standard Subject field.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.StandardClaims
}

type TokenService struct {
	key []byte
	ttl time.Duration
}

// NewTokenService returns a service signing with key. An empty key is
// a configuration error; callers treat it as fatal at startup.
func NewTokenService(key string) (*TokenService, error) {
	if key == "" {
		return nil, ErrMissingSigningKey
	}
	return &TokenService{key: []byte(key), ttl: TokenTTL}, nil
}

// Sign returns a compact HS256 token asserting the given account
// fields, valid from now until now plus the TTL.
func (ts *TokenService) Sign(accountID, username, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		Email:    email,
		StandardClaims: jwt.StandardClaims{
			Issuer:    "bookapi",
			Subject:   accountID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ts.ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.key)
}

// Verify checks signature, structure and expiry and returns the
// embedded claims. Verification is local: no store lookups, the claim
// fields are trusted as of issuance time.
func (ts *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return ts.key, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
