// Package handler はmarketフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ftse_backend/internal/api"
	"ftse_backend/internal/feature/market/domain"
	"ftse_backend/internal/feature/market/domain/entity"
	"ftse_backend/internal/feature/market/transport/http/dto"
	"ftse_backend/internal/shared/tradingday"
)

// OHLCUsecase は日足データ参照のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type OHLCUsecase interface {
	GetBars(ctx context.Context, days int) (entity.Series, error)
}

// OHLCHandler は日足データのHTTPリクエストを処理します。
type OHLCHandler struct {
	uc OHLCUsecase
}

// NewOHLCHandler は指定されたusecaseでOHLCHandlerの新しいインスタンスを生成します。
func NewOHLCHandler(uc OHLCUsecase) *OHLCHandler {
	return &OHLCHandler{uc: uc}
}

// GetOHLC は直近の日足を日付昇順のJSONで返します。
//
// エンドポイント例:
// GET /ohlc?days=180
func (h *OHLCHandler) GetOHLC(c *gin.Context) {
	// 不正な値は0としてusecaseに渡し、デフォルト値への変換はusecaseで行う
	days, _ := strconv.Atoi(c.DefaultQuery("days", "180"))

	series, err := h.uc.GetBars(c.Request.Context(), days)
	if err != nil {
		slog.Error("failed to fetch ohlc", "error", err, "days", days)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNoDataAvailable) {
			status = http.StatusBadGateway
		}
		c.JSON(status, api.ErrorResponse{Error: err.Error()})
		return
	}

	// データをフォーマット
	rows := make([]dto.BarResponse, 0, len(series.Bars))
	for _, b := range series.Bars {
		rows = append(rows, dto.BarResponse{
			Date:   tradingday.Key(b.Date),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}

	c.JSON(http.StatusOK, dto.OHLCResponse{Rows: rows, TickerUsed: series.Ticker, Source: series.Source})
}
