// Package handler はsignalフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"ftse_backend/internal/api"
	marketdomain "ftse_backend/internal/feature/market/domain"
	"ftse_backend/internal/feature/signal/domain"
)

// statusFor はドメインエラーをHTTPステータスに変換します。
// プロバイダ障害は空の期間より優先して 502 とします。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInsufficientHistory),
		errors.Is(err, domain.ErrNoValidTradingDay):
		return http.StatusBadRequest
	case errors.Is(err, marketdomain.ErrNoDataAvailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrEmptyRange),
		errors.Is(err, domain.ErrPredictionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrStoreRequestFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		// ErrInferenceFailed を含む
		return http.StatusInternalServerError
	}
}

// writeError はエラーをログに出力し、対応するステータスで返します。
func writeError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "status", status)
	} else {
		slog.Warn(op+" rejected", "error", err, "status", status)
	}
	c.JSON(status, api.ErrorResponse{Error: err.Error()})
}

// badRequest はクエリパラメータの誤りを400で返します。
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
}
