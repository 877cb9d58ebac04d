package handler_test

import (
	"context"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"

	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/feature/signal/usecase"
	jwtmw "ftse_backend/internal/platform/jwt"
	"ftse_backend/internal/shared/tradingday"
)

type mockPredictUsecase struct {
	PredictFunc func(ctx context.Context, userID string) (entity.Prediction, error)
}

func (m *mockPredictUsecase) Predict(ctx context.Context, userID string) (entity.Prediction, error) {
	return m.PredictFunc(ctx, userID)
}

type mockBacktestUsecase struct {
	PointFunc  func(ctx context.Context, date time.Time, cost float64) (entity.PointResult, error)
	RangeFunc  func(ctx context.Context, start, end time.Time, window int, cost float64) (entity.BacktestReport, error)
	LedgerFunc func(ctx context.Context, p usecase.LedgerParams) (entity.BacktestReport, error)
}

func (m *mockBacktestUsecase) Point(ctx context.Context, date time.Time, cost float64) (entity.PointResult, error) {
	return m.PointFunc(ctx, date, cost)
}

func (m *mockBacktestUsecase) Range(ctx context.Context, start, end time.Time, window int, cost float64) (entity.BacktestReport, error) {
	return m.RangeFunc(ctx, start, end, window, cost)
}

func (m *mockBacktestUsecase) Ledger(ctx context.Context, p usecase.LedgerParams) (entity.BacktestReport, error) {
	return m.LedgerFunc(ctx, p)
}

type mockReconcileUsecase struct {
	ReconcileFunc func(ctx context.Context, p usecase.ReconcileParams) (usecase.ReconcileResult, error)
	RepairFunc    func(ctx context.Context, userID string, limit int) (usecase.RepairResult, error)
}

func (m *mockReconcileUsecase) Reconcile(ctx context.Context, p usecase.ReconcileParams) (usecase.ReconcileResult, error) {
	return m.ReconcileFunc(ctx, p)
}

func (m *mockReconcileUsecase) Repair(ctx context.Context, userID string, limit int) (usecase.RepairResult, error) {
	return m.RepairFunc(ctx, userID, limit)
}

type mockHistoryUsecase struct {
	ListFunc func(ctx context.Context, q usecase.HistoryQuery) ([]entity.Prediction, error)
	GetFunc  func(ctx context.Context, userID, id string) (entity.Prediction, error)
}

func (m *mockHistoryUsecase) List(ctx context.Context, q usecase.HistoryQuery) ([]entity.Prediction, error) {
	return m.ListFunc(ctx, q)
}

func (m *mockHistoryUsecase) Get(ctx context.Context, userID, id string) (entity.Prediction, error) {
	return m.GetFunc(ctx, userID, id)
}

// newRouter はテスト用のルーターを作ります。userID が空でなければ認証済みとして扱います。
func newRouter(userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if userID != "" {
		r.Use(func(c *gin.Context) {
			c.Set(jwtmw.ContextUserID, userID)
			c.Next()
		})
	}
	return r
}

func serve(r *gin.Engine, method, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, url, nil))
	return w
}

func date(s string) time.Time {
	d, err := tradingday.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func f64(v float64) *float64 { return &v }
