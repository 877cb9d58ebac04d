package usecase

import (
	"context"
	"time"

	marketentity "ftse_backend/internal/feature/market/domain/entity"
	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/shared/tradingday"
)

// mockMarketRepository はMarketRepositoryのモック実装です。
type mockMarketRepository struct {
	FetchDailyFunc  func(ctx context.Context, ticker string, start, end time.Time) (marketentity.Series, error)
	FetchDailyCalls int
	LastStart       time.Time
	LastEnd         time.Time
}

func (m *mockMarketRepository) FetchDaily(ctx context.Context, ticker string, start, end time.Time) (marketentity.Series, error) {
	m.FetchDailyCalls++
	m.LastStart, m.LastEnd = start, end
	return m.FetchDailyFunc(ctx, ticker, start, end)
}

// seriesMarket は与えられた系列のうち [start, end] の日足だけを返すモックを作ります。
func seriesMarket(bars []marketentity.Bar) *mockMarketRepository {
	return &mockMarketRepository{
		FetchDailyFunc: func(_ context.Context, ticker string, start, end time.Time) (marketentity.Series, error) {
			s := marketentity.Series{Ticker: ticker, Source: "test"}
			for _, b := range bars {
				if b.Date.Before(tradingday.Date(start)) || b.Date.After(tradingday.Date(end)) {
					continue
				}
				s.Bars = append(s.Bars, b)
			}
			return s, nil
		},
	}
}

// mockForecaster はForecasterのモック実装です。
type mockForecaster struct {
	PredictFunc func(ctx context.Context, window entity.FeatureWindow) (float64, error)
	Windows     []entity.FeatureWindow
}

func (m *mockForecaster) Predict(ctx context.Context, window entity.FeatureWindow) (float64, error) {
	m.Windows = append(m.Windows, window)
	return m.PredictFunc(ctx, window)
}

// lastClosePlus は直近終値に delta を加えた値を予測するモックを作ります。
func lastClosePlus(delta float64) *mockForecaster {
	return &mockForecaster{PredictFunc: func(_ context.Context, w entity.FeatureWindow) (float64, error) {
		return w.LastClose() + delta, nil
	}}
}

// mockPredictionRepository はPredictionRepositoryのモック実装です。
type mockPredictionRepository struct {
	InsertFunc   func(ctx context.Context, p entity.Prediction) (entity.Prediction, error)
	ListFunc     func(ctx context.Context, q entity.PredictionQuery) ([]entity.Prediction, error)
	FindByIDFunc func(ctx context.Context, id, userID string) (entity.Prediction, error)
	UpdateFunc   func(ctx context.Context, id string, patch entity.PredictionPatch) error

	ListQueries []entity.PredictionQuery
	Updates     map[string]entity.PredictionPatch
}

func (m *mockPredictionRepository) Insert(ctx context.Context, p entity.Prediction) (entity.Prediction, error) {
	return m.InsertFunc(ctx, p)
}

func (m *mockPredictionRepository) List(ctx context.Context, q entity.PredictionQuery) ([]entity.Prediction, error) {
	m.ListQueries = append(m.ListQueries, q)
	return m.ListFunc(ctx, q)
}

func (m *mockPredictionRepository) FindByID(ctx context.Context, id, userID string) (entity.Prediction, error) {
	return m.FindByIDFunc(ctx, id, userID)
}

func (m *mockPredictionRepository) Update(ctx context.Context, id string, patch entity.PredictionPatch) error {
	if m.Updates == nil {
		m.Updates = map[string]entity.PredictionPatch{}
	}
	if m.UpdateFunc != nil {
		if err := m.UpdateFunc(ctx, id, patch); err != nil {
			return err
		}
	}
	m.Updates[id] = patch
	return nil
}

// mockObserver は通知内容を記録します。
type mockObserver struct {
	Signals    []entity.Signal
	Saved      []bool
	Backtests  []string
	Reconciles []string
}

func (m *mockObserver) PredictionIssued(sig entity.Signal, saved bool) {
	m.Signals = append(m.Signals, sig)
	m.Saved = append(m.Saved, saved)
}

func (m *mockObserver) BacktestCompleted(mode string, rows, skipped int) {
	m.Backtests = append(m.Backtests, mode)
}

func (m *mockObserver) ReconcileCompleted(op string, updated, skipped int) {
	m.Reconciles = append(m.Reconciles, op)
}

// weekdayBars は from 以降の平日に closes を順に割り当てた日足を作ります。
func weekdayBars(from time.Time, closes ...float64) []marketentity.Bar {
	bars := make([]marketentity.Bar, 0, len(closes))
	d := tradingday.Date(from)
	for !tradingday.IsWeekday(d) {
		d = d.AddDate(0, 0, 1)
	}
	for _, c := range closes {
		bars = append(bars, marketentity.Bar{Date: d, Open: c - 1, High: c + 2, Low: c - 2, Close: c, Volume: 1000})
		d = tradingday.Next(d)
	}
	return bars
}

// rampCloses は start から step ずつ増える n 個の終値を返します。
func rampCloses(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func date(s string) time.Time {
	d, err := tradingday.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func f64(v float64) *float64 { return &v }
