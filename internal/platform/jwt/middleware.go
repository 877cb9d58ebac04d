package jwtmw

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// EnvKeyJWTSecret はHS256署名鍵を保持する環境変数名です（SupabaseのJWTシークレット）。
const EnvKeyJWTSecret = "JWT_SECRET"

// ContextUserID はgin.Contextに格納するユーザーIDのキーです。
const ContextUserID = "userID"

var (
	errMissingBearer = errors.New("missing bearer token")
	errInvalidToken  = errors.New("invalid token")
	errMisconfigured = errors.New("server misconfigured")
)

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticate(c.GetHeader("Authorization"))
		switch {
		case errors.Is(err, errMisconfigured):
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if userID != "" {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	}
}

// OptionalAuth は有効なトークンがあればユーザーIDを設定し、なければそのまま通過させます。
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, err := authenticate(c.GetHeader("Authorization")); err == nil && userID != "" {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	}
}

// UserID はコンテキストに設定されたユーザーIDを返します。未認証なら空文字です。
func UserID(c *gin.Context) string {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// authenticate はAuthorizationヘッダーを検証し、subクレームを返します。
func authenticate(header string) (string, error) {
	// 1. Bearerトークンを取り出す
	if !strings.HasPrefix(header, "Bearer ") {
		return "", errMissingBearer
	}
	tokenStr := strings.TrimPrefix(header, "Bearer ")

	// 2. 署名鍵を環境変数から読み込む
	secret := os.Getenv(EnvKeyJWTSecret)
	if secret == "" {
		return "", errMisconfigured
	}

	// 3. 署名を検証（HMACのみ許可）
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}

	// 4. subクレームを取り出す（Supabaseは文字列のUUID）
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", nil
	}
	switch sub := claims["sub"].(type) {
	case string:
		return sub, nil
	case float64: // JWT numbers are decoded as float64
		return strconv.FormatInt(int64(sub), 10), nil
	}
	return "", nil
}
