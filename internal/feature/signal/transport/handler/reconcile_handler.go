package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ftse_backend/internal/feature/signal/transport/http/dto"
	"ftse_backend/internal/feature/signal/usecase"
	jwtmw "ftse_backend/internal/platform/jwt"
)

// ReconcileUsecase は突合と prediction_for 修復のユースケースインターフェースを定義します。
type ReconcileUsecase interface {
	Reconcile(ctx context.Context, p usecase.ReconcileParams) (usecase.ReconcileResult, error)
	Repair(ctx context.Context, userID string, limit int) (usecase.RepairResult, error)
}

// ReconcileHandler は突合のHTTPリクエストを処理します。
// 認証済みユーザーのレコードだけが対象です。
type ReconcileHandler struct {
	uc ReconcileUsecase
}

// NewReconcileHandler は指定されたusecaseでReconcileHandlerの新しいインスタンスを生成します。
func NewReconcileHandler(uc ReconcileUsecase) *ReconcileHandler {
	return &ReconcileHandler{uc: uc}
}

// Reconcile は未突合（force=true の場合は全件）のレコードに実績終値を設定します。
//
// エンドポイント例:
// POST /reconcile?force=false&days_back=730&limit=5000
func (h *ReconcileHandler) Reconcile(c *gin.Context) {
	force, err := queryBool(c, "force", false)
	if err != nil {
		badRequest(c, err)
		return
	}
	daysBack, err := queryInt(c, "days_back", usecase.DefaultDaysBack)
	if err != nil {
		badRequest(c, err)
		return
	}
	limit, err := queryInt(c, "limit", usecase.DefaultBatchLimit)
	if err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.uc.Reconcile(c.Request.Context(), usecase.ReconcileParams{
		UserID:   jwtmw.UserID(c),
		Force:    force,
		DaysBack: daysBack,
		Limit:    limit,
	})
	if err != nil {
		writeError(c, "reconcile", err)
		return
	}
	c.JSON(http.StatusOK, dto.ReconcileResponse{Success: true, Updated: res.Updated, Skipped: res.Skipped, Reason: res.Reason})
}

// Repair は prediction_for が window_end と同じ日になっているレコードを翌営業日に修復します。
//
// エンドポイント例:
// POST /repair_prediction_for?limit=5000
func (h *ReconcileHandler) Repair(c *gin.Context) {
	limit, err := queryInt(c, "limit", usecase.DefaultBatchLimit)
	if err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.uc.Repair(c.Request.Context(), jwtmw.UserID(c), limit)
	if err != nil {
		writeError(c, "repair", err)
		return
	}
	c.JSON(http.StatusOK, dto.RepairResponse{Success: true, Fixed: res.Fixed, Skipped: res.Skipped})
}
