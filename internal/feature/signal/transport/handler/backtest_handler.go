package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/feature/signal/usecase"
)

// BacktestUsecase はバックテストのユースケースインターフェースを定義します。
type BacktestUsecase interface {
	Point(ctx context.Context, date time.Time, cost float64) (entity.PointResult, error)
	Range(ctx context.Context, start, end time.Time, window int, cost float64) (entity.BacktestReport, error)
	Ledger(ctx context.Context, p usecase.LedgerParams) (entity.BacktestReport, error)
}

// BacktestHandler はバックテストのHTTPリクエストを処理します。
type BacktestHandler struct {
	uc BacktestUsecase
}

// NewBacktestHandler は指定されたusecaseでBacktestHandlerの新しいインスタンスを生成します。
func NewBacktestHandler(uc BacktestUsecase) *BacktestHandler {
	return &BacktestHandler{uc: uc}
}

// Ledger は突合済みの保存レコードを評価します。対象がなければ count 0 のレポートを返します。
//
// エンドポイント例:
// GET /backtest?start=2024-01-01&end=2024-06-30&window=7&cost=0.001
func (h *BacktestHandler) Ledger(c *gin.Context) {
	start, err := queryDate(c, "start")
	if err != nil {
		badRequest(c, err)
		return
	}
	end, err := queryDate(c, "end")
	if err != nil {
		badRequest(c, err)
		return
	}
	window, cost, err := evaluationParams(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	report, err := h.uc.Ledger(c.Request.Context(), usecase.LedgerParams{From: start, To: end, Window: window, Cost: cost})
	if err != nil {
		writeError(c, "ledger backtest", err)
		return
	}
	c.JSON(http.StatusOK, toBacktestResponse(report))
}

// Point は指定日（休日の場合は次の有効な営業日）の予測を再現して評価します。
//
// エンドポイント例:
// GET /backtest/point?date=2024-01-05&cost=0.001
func (h *BacktestHandler) Point(c *gin.Context) {
	date, err := requiredDate(c, "date")
	if err != nil {
		badRequest(c, err)
		return
	}
	cost, err := queryFloat(c, "cost", 0)
	if err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.uc.Point(c.Request.Context(), date, cost)
	if err != nil {
		writeError(c, "point backtest", err)
		return
	}
	c.JSON(http.StatusOK, toPointResponse(res))
}

// Range は期間内の各営業日の予測を再現して評価します。
//
// エンドポイント例:
// GET /backtest/range?start=2024-01-01&end=2024-03-31&window=7&cost=0
func (h *BacktestHandler) Range(c *gin.Context) {
	start, err := requiredDate(c, "start")
	if err != nil {
		badRequest(c, err)
		return
	}
	end, err := requiredDate(c, "end")
	if err != nil {
		badRequest(c, err)
		return
	}
	window, cost, err := evaluationParams(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	report, err := h.uc.Range(c.Request.Context(), start, end, window, cost)
	if err != nil {
		writeError(c, "range backtest", err)
		return
	}
	c.JSON(http.StatusOK, toBacktestResponse(report))
}

func evaluationParams(c *gin.Context) (int, float64, error) {
	window, err := queryInt(c, "window", usecase.DefaultRollingWindow)
	if err != nil {
		return 0, 0, err
	}
	cost, err := queryFloat(c, "cost", 0)
	if err != nil {
		return 0, 0, err
	}
	return window, cost, nil
}
