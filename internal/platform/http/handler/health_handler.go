// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ServiceName はヘルスチェック応答に含めるサービス名です。
const ServiceName = "ftse-api"

// checkTimeout は依存先1件あたりの確認時間の上限です。
const checkTimeout = 2 * time.Second

// Check は依存先（レコードストア、Redisなど）の疎通確認です。
// Ping が nil の依存先は "disabled" と報告されます。
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// プロセスの生存のみを返し、依存先には触れません。
func Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": ServiceName})
	}
}

// Readiness は /health 用のハンドラを返します。依存先ごとの状態を "ok" / "disabled" / エラー文言で返し、
// いずれかが失敗していれば status を "degraded" にします。予測は保存なしでも返せるため常に200です。
func Readiness(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		status := "ok"
		deps := make(map[string]string, len(checks))
		for _, chk := range checks {
			if chk.Ping == nil {
				deps[chk.Name] = "disabled"
				continue
			}
			ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
			err := chk.Ping(ctx)
			cancel()
			if err != nil {
				deps[chk.Name] = err.Error()
				status = "degraded"
				continue
			}
			deps[chk.Name] = "ok"
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "service": ServiceName, "checks": deps})
	}
}
