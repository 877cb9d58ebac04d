// Package breaker は外部プロバイダ呼び出しをサーキットブレーカーで保護します。
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"ftse_backend/internal/feature/market/domain/entity"
	"ftse_backend/internal/feature/market/usecase"
)

const (
	// DefaultConsecutiveFailures はオープンに遷移する連続失敗回数です。
	DefaultConsecutiveFailures = 3
	// DefaultOpenTimeout はオープン状態からハーフオープンへ移るまでの時間です。
	DefaultOpenTimeout = 60 * time.Second
)

// MarketBreaker はMarketRepositoryをサーキットブレーカーでラップします。
// オープン中は上流を呼ばずに即座にエラーを返すため、フォールバックチェーンは次のプロバイダへ進みます。
type MarketBreaker struct {
	inner usecase.MarketRepository
	cb    *gobreaker.CircuitBreaker
}

var _ usecase.MarketRepository = (*MarketBreaker)(nil)

// Settings はブレーカーの閾値です。ゼロ値はデフォルトを使います。
type Settings struct {
	ConsecutiveFailures uint32
	Timeout             time.Duration
}

// NewMarketBreaker はMarketBreakerの新しいインスタンスを生成します。
func NewMarketBreaker(name string, inner usecase.MarketRepository, s Settings) *MarketBreaker {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = DefaultConsecutiveFailures
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultOpenTimeout
	}
	st := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		// 呼び出し側のキャンセルはプロバイダの失敗として数えない
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "source", name, "from", from.String(), "to", to.String())
		},
	}
	return &MarketBreaker{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

// FetchDaily はブレーカー経由で上流を呼び出します。
func (b *MarketBreaker) FetchDaily(ctx context.Context, ticker string, start, end time.Time) (entity.Series, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.inner.FetchDaily(ctx, ticker, start, end)
	})
	if err != nil {
		return entity.Series{}, err
	}
	return out.(entity.Series), nil
}

// State は現在のブレーカー状態を返します。
func (b *MarketBreaker) State() gobreaker.State { return b.cb.State() }
