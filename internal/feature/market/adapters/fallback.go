// Package adapters は複数の市場データプロバイダを束ねるアダプタを提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ftse_backend/internal/feature/market/domain"
	"ftse_backend/internal/feature/market/domain/entity"
	"ftse_backend/internal/feature/market/usecase"
)

// Source はフォールバックチェーンの1要素です。
type Source struct {
	Name   string
	Market usecase.MarketRepository
}

// FallbackMarket は登録順にプロバイダを試し、最初に日足を返したものを採用します。
// エラーまたは0本の応答は次のプロバイダへフォールスルーします。
type FallbackMarket struct {
	sources []Source
}

var _ usecase.MarketRepository = (*FallbackMarket)(nil)

// NewFallbackMarket はFallbackMarketの新しいインスタンスを生成します。
func NewFallbackMarket(sources ...Source) *FallbackMarket {
	return &FallbackMarket{sources: sources}
}

// Names は登録済みプロバイダ名を登録順に返します。
func (f *FallbackMarket) Names() []string {
	names := make([]string, len(f.sources))
	for i, s := range f.sources {
		names[i] = s.Name
	}
	return names
}

// FetchDaily はいずれのプロバイダも日足を返さなかった場合 domain.ErrNoDataAvailable を返します。
func (f *FallbackMarket) FetchDaily(ctx context.Context, ticker string, start, end time.Time) (entity.Series, error) {
	var errs []error
	for _, s := range f.sources {
		series, err := s.Market.FetchDaily(ctx, ticker, start, end)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return entity.Series{}, ctxErr
			}
			slog.Warn("market source failed", "source", s.Name, "ticker", ticker, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		if len(series.Bars) == 0 {
			slog.Warn("market source returned no bars", "source", s.Name, "ticker", ticker)
			continue
		}
		if series.Source == "" {
			series.Source = s.Name
		}
		if series.Ticker == "" {
			series.Ticker = ticker
		}
		slog.Info("market data served", "source", series.Source, "ticker", ticker, "bars", len(series.Bars))
		return series, nil
	}

	if len(errs) == 0 {
		return entity.Series{}, fmt.Errorf("%w: %s", domain.ErrNoDataAvailable, ticker)
	}
	return entity.Series{}, fmt.Errorf("%w: %s: %w", domain.ErrNoDataAvailable, ticker, errors.Join(errs...))
}
