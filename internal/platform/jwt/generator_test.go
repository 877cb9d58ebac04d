package jwtmw

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestNewGenerator は各種設定でGeneratorが正しく生成されることを検証します。
func TestNewGenerator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		secret     string
		expiration time.Duration
	}{
		{"standard config", "my-secret-key", time.Hour},
		{"long expiration", "secret", 24 * time.Hour * 30},
		{"short expiration", "s", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen, ok := NewGenerator(tt.secret, tt.expiration).(*generator)
			if !ok {
				t.Fatal("expected *generator")
			}
			if string(gen.secret) != tt.secret {
				t.Errorf("expected secret %q, got %q", tt.secret, string(gen.secret))
			}
			if gen.expiration != tt.expiration {
				t.Errorf("expected expiration %v, got %v", tt.expiration, gen.expiration)
			}
		})
	}
}

// TestGenerator_GenerateToken は生成されたJWTトークンが有効で正しいクレームを含むことを検証します。
func TestGenerator_GenerateToken(t *testing.T) {
	t.Parallel()

	fixed := time.Now().Truncate(time.Second)
	gen := &generator{secret: []byte("test-secret"), expiration: 2 * time.Hour, now: func() time.Time { return fixed }}

	tokenStr, err := gen.GenerateToken("ops")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	token, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			t.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("failed to parse token: %v", err)
	}

	claims := token.Claims.(jwt.MapClaims)
	if sub, _ := claims["sub"].(string); sub != "ops" {
		t.Errorf("expected sub %q, got %v", "ops", claims["sub"])
	}
	if exp := int64(claims["exp"].(float64)); exp != fixed.Add(2*time.Hour).Unix() {
		t.Errorf("unexpected exp %d", exp)
	}
	if iat := int64(claims["iat"].(float64)); iat != fixed.Unix() {
		t.Errorf("unexpected iat %d", iat)
	}
}

// TestGenerator_GenerateToken_AcceptedByMiddleware は生成したトークンがミドルウェアの検証を通ることを検証します。
func TestGenerator_GenerateToken_AcceptedByMiddleware(t *testing.T) {
	t.Setenv(EnvKeyJWTSecret, "shared-secret")

	tokenStr, err := NewGenerator("shared-secret", time.Hour).GenerateToken("scheduler")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub, err := authenticate("Bearer " + tokenStr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub != "scheduler" {
		t.Errorf("expected subject %q, got %q", "scheduler", sub)
	}
}

// TestGenerator_GenerateToken_EmptySecret は空のシークレットでは署名しないことを検証します。
func TestGenerator_GenerateToken_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewGenerator("", time.Hour).GenerateToken("ops"); err == nil {
		t.Error("expected error for empty secret")
	}
}
