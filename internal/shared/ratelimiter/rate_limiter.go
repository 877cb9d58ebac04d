// Package ratelimiter は外部API呼び出しの頻度を制限します。
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiter はトークンバケットで呼び出し頻度を制限します。
// interval あたり limit 回まで即時に許可し、それを超えると補充を待ちます。
type RateLimiter struct {
	name    string
	limiter *rate.Limiter
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limit が0以下の場合は制限なしになります。
func NewRateLimiter(name string, limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{name: name, limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	every := interval / time.Duration(limit)
	return &RateLimiter{name: name, limiter: rate.NewLimiter(rate.Every(every), limit)}
}

// Wait はトークンが得られるまで待機します。ctx がキャンセルされた場合はエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limiter.Allow() {
		return nil
	}
	slog.Debug("rate limit reached, waiting", "limiter", rl.name)
	return rl.limiter.Wait(ctx)
}
