package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"qontrolla/pkg/config"
)

var (
	// ErrTokenMalformed reports a token whose encoding or signature is invalid.
	ErrTokenMalformed = errors.New("token is malformed or has an invalid signature")
	// ErrTokenExpired reports a well-formed token past its embedded expiry.
	ErrTokenExpired = errors.New("token has expired")
)

// AccessClaims is the signed payload carried inside an access token. The
// subject registered claim holds the user's email.
type AccessClaims struct {
	TenantID    uuid.UUID `json:"tenant_id"`
	IsSuperuser bool      `json:"is_superuser"`
	jwt.RegisteredClaims
}

// TokenCodec issues and parses signed access tokens. Tokens are never
// persisted; they are reconstructed from the bearer header on every request.
type TokenCodec struct {
	config *config.JWTConfig
	method jwt.SigningMethod
}

// NewTokenCodec creates a token codec from the JWT configuration. It fails
// when the configured algorithm identifier is unknown.
func NewTokenCodec(cfg *config.JWTConfig) (*TokenCodec, error) {
	if cfg == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	method := jwt.GetSigningMethod(cfg.Algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm: %q", cfg.Algorithm)
	}

	return &TokenCodec{config: cfg, method: method}, nil
}

// Issue creates a signed access token for the given subject. The expiry is
// the UTC wall clock plus the configured TTL in minutes.
func (t *TokenCodec) Issue(email string, tenantID uuid.UUID, isSuperuser bool) (string, error) {
	now := time.Now().UTC()

	claims := AccessClaims{
		TenantID:    tenantID,
		IsSuperuser: isSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(t.config.ExpireMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(t.method, claims)
	return token.SignedString([]byte(t.config.SigningKey))
}

// Parse validates the signature and expiry of a token and returns its claims.
// It returns ErrTokenExpired for a valid signature past its expiry and
// ErrTokenMalformed for every other validation failure.
func (t *TokenCodec) Parse(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != t.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(t.config.SigningKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
