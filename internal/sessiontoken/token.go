// Package sessiontoken signs and verifies the session cookie value.
package sessiontoken

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTTL is the default lifetime for session cookies.
	DefaultTTL = 24 * time.Hour
	// DefaultLeeway is clock skew tolerance for token validation.
	DefaultLeeway = 30 * time.Second

	issuer = "promptforge"
)

// Codec issues and validates HS256 JWTs whose subject is a session ID.
// The cookie only proves the browser owns the session; all state lives in
// the session store.
type Codec struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
}

// NewCodec builds a codec from a shared secret. An empty secret gets a
// random per-process value, which invalidates cookies on restart but keeps
// the service usable without configuration.
func NewCodec(secret string, ttl time.Duration) (*Codec, error) {
	key := []byte(strings.TrimSpace(secret))
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{
		secret: key,
		ttl:    ttl,
		leeway: DefaultLeeway,
	}, nil
}

// Sign issues a token bound to the given session ID.
func (c *Codec) Sign(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", errors.New("session id required")
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify validates the token and returns the session ID it is bound to.
func (c *Codec) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("token required")
	}
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unsupported signing method")
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(c.leeway),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return "", err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("subject required")
	}
	return claims.Subject, nil
}
