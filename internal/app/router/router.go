// Package router はHTTPルーティングを定義します。
package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ftse_backend/internal/app/di"
	"ftse_backend/internal/platform/http/handler"
	jwtmw "ftse_backend/internal/platform/jwt"
	"ftse_backend/internal/platform/metrics"
)

// CORSOrigins は環境変数 CORS_ORIGINS（カンマ区切り）から許可するオリジンを返します。
func CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// NewRouter はルーティングを設定したginエンジンを返します。
// reg が nil の場合は /metrics を公開しません。
func NewRouter(h di.Handlers, reg *metrics.Registry, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if reg != nil {
		r.Use(reg.Middleware())
		r.GET("/metrics", reg.Handler())
	}

	// CORS: オリジン未設定の場合はすべて許可
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.GET("/health", handler.Readiness(h.Checks...))
	r.GET("/ohlc", h.OHLC.GetOHLC)
	r.GET("/backtest", h.Backtest.Ledger)
	r.GET("/backtest/point", h.Backtest.Point)
	r.GET("/backtest/range", h.Backtest.Range)

	// トークンがあれば所有者として保存
	r.GET("/predict", jwtmw.OptionalAuth(), h.Predict.Predict)

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired())
	{
		auth.POST("/reconcile", h.Reconcile.Reconcile)
		auth.POST("/repair_prediction_for", h.Reconcile.Repair)
		auth.GET("/history", h.History.List)
		auth.GET("/history/:id", h.History.Get)
	}

	return r
}
