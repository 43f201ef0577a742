package http

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

const (
	tokenIssuer   = "auth-harness"
	tokenAudience = "auth-harness-engine"
	tokenLifetime = 2 * time.Minute
	tokenLeeway   = 30 * time.Second
)

// TokenAuth issues and checks the HS256 bearer tokens that guard a remote engine.
// Client and server share the secret. TokenAuth is immutable after construction.
type TokenAuth struct {
	key []byte
	now func() time.Time
}

// NewTokenAuth creates a TokenAuth from a shared secret.
// The HMAC key is the SHA-256 of the secret, so any non-empty secret meets
// the HS256 key size.
func NewTokenAuth(secret string) (*TokenAuth, error) {
	if secret == "" {
		return nil, errors.New("engine secret must not be empty")
	}
	key := sha256.Sum256([]byte(secret))
	return &TokenAuth{key: key[:], now: time.Now}, nil
}

// Token returns a short-lived signed token.
func (a *TokenAuth) Token() (string, error) {
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: a.key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create signer: %w", err)
	}

	now := a.now()
	claims := jwt.Claims{
		Issuer:    tokenIssuer,
		Audience:  jwt.Audience{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(now.Add(tokenLifetime)),
	}

	token, err := jwt.Signed(signer).Claims(claims).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Check validates a token issued by a TokenAuth with the same secret.
func (a *TokenAuth) Check(raw string) error {
	token, err := jwt.ParseSigned(raw)
	if err != nil {
		return fmt.Errorf("malformed token: %w", err)
	}
	if len(token.Headers) != 1 || token.Headers[0].Algorithm != string(jose.HS256) {
		return errors.New("unexpected token algorithm")
	}

	var claims jwt.Claims
	if err := token.Claims(a.key, &claims); err != nil {
		return fmt.Errorf("invalid token signature: %w", err)
	}
	expected := jwt.Expected{
		Issuer:   tokenIssuer,
		Audience: jwt.Audience{tokenAudience},
		Time:     a.now(),
	}
	if err := claims.ValidateWithLeeway(expected, tokenLeeway); err != nil {
		return fmt.Errorf("invalid token claims: %w", err)
	}
	return nil
}

// Middleware rejects requests without a valid bearer token.
func (a *TokenAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}
		if err := a.Check(raw); err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
