// Package synthetic は開発用の合成日足（営業日のランダムウォーク）を返すMarketRepository実装を提供します。
// 本番では ALLOW_MOCK_DATA が有効な場合のみ、フォールバックの最後に使われます。
package synthetic

import (
	"context"
	"math/rand/v2"
	"time"

	"ftse_backend/internal/feature/market/domain/entity"
	"ftse_backend/internal/feature/market/usecase"
	"ftse_backend/internal/shared/tradingday"
)

const (
	// SourceName はこのプロバイダを識別する名前です。
	SourceName = "mock"
	// BasePrice はランダムウォークの初期値です。
	BasePrice = 7600.0
	// dailyVol は1日あたりの騰落率の標準偏差です。
	dailyVol = 0.003
)

// SyntheticMarket は同じ期間に対して常に同じ系列を返します。
type SyntheticMarket struct {
	seed uint64
}

var _ usecase.MarketRepository = (*SyntheticMarket)(nil)

// NewSyntheticMarket はSyntheticMarketの新しいインスタンスを生成します。
func NewSyntheticMarket(seed uint64) *SyntheticMarket {
	return &SyntheticMarket{seed: seed}
}

// FetchDaily は [start, end] の平日ごとに1本の日足を生成します。出来高は常に0です。
func (m *SyntheticMarket) FetchDaily(ctx context.Context, ticker string, start, end time.Time) (entity.Series, error) {
	if err := ctx.Err(); err != nil {
		return entity.Series{}, err
	}
	first := tradingday.Date(start)
	last := tradingday.Date(end)
	rng := rand.New(rand.NewPCG(m.seed, uint64(first.Unix())))

	series := entity.Series{Ticker: ticker, Source: SourceName}
	price := BasePrice
	prev := price
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if !tradingday.IsWeekday(d) {
			continue
		}
		price *= 1 + rng.NormFloat64()*dailyVol
		series.Bars = append(series.Bars, entity.Bar{
			Date:  d,
			Open:  prev * 1.0005,
			High:  price * 1.003,
			Low:   price * 0.997,
			Close: price,
		})
		prev = price
	}
	return series, nil
}
