package jwtmw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Generator defines the interface for JWT token generation.
type Generator interface {
	// GenerateToken creates a signed JWT token for the given subject.
	GenerateToken(subject string) (string, error)
}

// generator implements the Generator interface.
type generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
// signalctl uses it to mint operator tokens for the protected endpoints.
func NewGenerator(secret string, expiration time.Duration) Generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed HS256 token with standard claims.
func (g *generator) GenerateToken(subject string) (string, error) {
	if len(g.secret) == 0 {
		return "", fmt.Errorf("failed to sign token: empty secret")
	}
	now := g.now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"exp":  now.Add(g.expiration).Unix(),
		"iat":  now.Unix(),
		"role": "authenticated",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
