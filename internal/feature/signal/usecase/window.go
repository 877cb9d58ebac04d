package usecase

import (
	"fmt"

	marketentity "ftse_backend/internal/feature/market/domain/entity"
	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/feature/signal/domain/entity"
)

// ExtractWindow は bars[idx] の直前 lookback 本（bars[idx] 自身は含まない）を特徴量ウィンドウにします。
// idx == len(bars) の場合は末尾 lookback 本になります。
func ExtractWindow(bars []marketentity.Bar, idx, lookback int) (entity.FeatureWindow, error) {
	if lookback <= 0 || idx > len(bars) || idx < lookback {
		return entity.FeatureWindow{}, fmt.Errorf("%w: need %d prior bars, have %d", domain.ErrInsufficientHistory, lookback, min(max(idx, 0), len(bars)))
	}
	slice := bars[idx-lookback : idx]
	rows := make([][5]float64, len(slice))
	for i, b := range slice {
		rows[i] = b.Features()
	}
	return entity.FeatureWindow{
		Start: slice[0].Date,
		End:   slice[len(slice)-1].Date,
		Rows:  rows,
	}, nil
}
