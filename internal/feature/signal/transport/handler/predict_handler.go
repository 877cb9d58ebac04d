package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ftse_backend/internal/feature/signal/domain/entity"
	jwtmw "ftse_backend/internal/platform/jwt"
)

// PredictUsecase はシグナル発行のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PredictUsecase interface {
	Predict(ctx context.Context, userID string) (entity.Prediction, error)
}

// PredictHandler は当日のシグナル発行リクエストを処理します。
type PredictHandler struct {
	uc PredictUsecase
}

// NewPredictHandler は指定されたusecaseでPredictHandlerの新しいインスタンスを生成します。
func NewPredictHandler(uc PredictUsecase) *PredictHandler {
	return &PredictHandler{uc: uc}
}

// Predict は翌営業日の終値を予測してシグナルを返します。
// 認証済みの場合はそのユーザーのレコードとして保存されます。保存できなかった場合 id は null です。
//
// エンドポイント例:
// GET /predict
func (h *PredictHandler) Predict(c *gin.Context) {
	p, err := h.uc.Predict(c.Request.Context(), jwtmw.UserID(c))
	if err != nil {
		writeError(c, "predict", err)
		return
	}
	c.JSON(http.StatusOK, toPredictionResponse(p))
}
