// Package usecase は市場データ（日足OHLCV）取得のビジネスロジックを実装します。
package usecase

import (
	"context"
	"time"

	"ftse_backend/internal/feature/market/domain/entity"
	"ftse_backend/internal/shared/tradingday"
)

const (
	// DefaultTicker は対象指数のデフォルトティッカーです（FTSE 100）。
	DefaultTicker = "^FTSE"
	// DefaultDays はOHLCクエリのデフォルト取得日数（暦日）です。
	DefaultDays = 180
	// MaxDays は取得日数の上限です。
	MaxDays = 3650
)

// MarketRepository は日足データの取得レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type MarketRepository interface {
	// FetchDaily は [start, end] の日足を日付昇順で返します。
	FetchDaily(ctx context.Context, ticker string, start, end time.Time) (entity.Series, error)
}

// TrailingRange は now を終端とする直近 days 暦日の期間を返します。
func TrailingRange(now time.Time, days int) (time.Time, time.Time) {
	end := tradingday.Date(now)
	return end.AddDate(0, 0, -days), end
}

// ohlcUsecase は日足データ参照のユースケースを定義します。
type ohlcUsecase struct {
	market MarketRepository
	ticker string
	now    func() time.Time
}

// NewOHLCUsecase はohlcUsecaseの新しいインスタンスを生成します。
func NewOHLCUsecase(market MarketRepository, ticker string) *ohlcUsecase {
	if ticker == "" {
		ticker = DefaultTicker
	}
	return &ohlcUsecase{market: market, ticker: ticker, now: time.Now}
}

// GetBars は直近 days 暦日分の日足を取得します。
func (u *ohlcUsecase) GetBars(ctx context.Context, days int) (entity.Series, error) {
	if days <= 0 || days > MaxDays {
		days = DefaultDays
	}
	start, end := TrailingRange(u.now(), days)
	return u.market.FetchDaily(ctx, u.ticker, start, end)
}
