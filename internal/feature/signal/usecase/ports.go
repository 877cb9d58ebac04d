// Package usecase はシグナル生成・バックテスト・突合（reconcile）のビジネスロジックを実装します。
package usecase

import (
	"context"
	"time"

	marketentity "ftse_backend/internal/feature/market/domain/entity"
	"ftse_backend/internal/feature/signal/domain/entity"
)

// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。

// MarketRepository は日足データの取得レイヤーを抽象化します。
type MarketRepository interface {
	FetchDaily(ctx context.Context, ticker string, start, end time.Time) (marketentity.Series, error)
}

// Forecaster は予測オラクルを抽象化します。
// 入力は lookback×5 の特徴量ウィンドウ、出力は翌営業日の終値の予測値です。
type Forecaster interface {
	Predict(ctx context.Context, window entity.FeatureWindow) (float64, error)
}

// PredictionRepository は予測レコードの永続化レイヤーを抽象化します。
type PredictionRepository interface {
	// Insert はレコードを保存し、IDと生成時刻が付与されたレコードを返します。
	Insert(ctx context.Context, p entity.Prediction) (entity.Prediction, error)
	// List は条件に合うレコードを返します。
	List(ctx context.Context, q entity.PredictionQuery) ([]entity.Prediction, error)
	// FindByID はIDでレコードを取得します。userID が空でなければ所有者も一致する必要があります。
	FindByID(ctx context.Context, id, userID string) (entity.Prediction, error)
	// Update はパッチを1回の書き込みで適用します。
	Update(ctx context.Context, id string, patch entity.PredictionPatch) error
}

// Observer はユースケースの結果をメトリクスへ通知します。
type Observer interface {
	PredictionIssued(signal entity.Signal, saved bool)
	BacktestCompleted(mode string, rows, skipped int)
	ReconcileCompleted(op string, updated, skipped int)
}

type noopObserver struct{}

func (noopObserver) PredictionIssued(entity.Signal, bool) {}
func (noopObserver) BacktestCompleted(string, int, int)   {}
func (noopObserver) ReconcileCompleted(string, int, int)  {}

func observerOrNoop(o Observer) Observer {
	if o == nil {
		return noopObserver{}
	}
	return o
}
