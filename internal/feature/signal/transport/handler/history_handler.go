package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/feature/signal/transport/http/dto"
	"ftse_backend/internal/feature/signal/usecase"
	jwtmw "ftse_backend/internal/platform/jwt"
)

// HistoryUsecase は保存済み予測の参照のユースケースインターフェースを定義します。
type HistoryUsecase interface {
	List(ctx context.Context, q usecase.HistoryQuery) ([]entity.Prediction, error)
	Get(ctx context.Context, userID, id string) (entity.Prediction, error)
}

// HistoryHandler は予測履歴のHTTPリクエストを処理します。
type HistoryHandler struct {
	uc HistoryUsecase
}

// NewHistoryHandler は指定されたusecaseでHistoryHandlerの新しいインスタンスを生成します。
func NewHistoryHandler(uc HistoryUsecase) *HistoryHandler {
	return &HistoryHandler{uc: uc}
}

// csvColumns はCSV出力の列です。
var csvColumns = []string{
	"id", "generated_at", "window_start", "window_end", "prediction_for",
	"last_close", "predicted_close", "direction_pred", "band_lower", "band_upper", "signal",
	"model_version", "scaler_version", "ticker_used",
	"actual_close", "abs_error", "pct_error", "direction_hit",
}

// List は認証済みユーザーの予測履歴を返します。format=csv の場合はCSVファイルとして返します。
//
// エンドポイント例:
// GET /history?limit=50&offset=0&by=generated_at&desc=true&format=json
func (h *HistoryHandler) List(c *gin.Context) {
	q, err := historyQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "csv" {
		badRequest(c, fmt.Errorf("%w: format must be json or csv", domain.ErrInvalidArgument))
		return
	}

	preds, err := h.uc.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, "history", err)
		return
	}

	data := make([]dto.HistoryRecordResponse, 0, len(preds))
	for _, p := range preds {
		data = append(data, toHistoryRecord(p))
	}

	if format == "csv" {
		writeCSV(c, data)
		return
	}
	c.JSON(http.StatusOK, dto.HistoryResponse{Success: true, Count: len(data), Offset: q.Offset, Limit: q.Limit, Data: data})
}

// Get はIDで予測を1件返します。他のユーザーのレコードは404です。
//
// エンドポイント例:
// GET /history/:id
func (h *HistoryHandler) Get(c *gin.Context) {
	p, err := h.uc.Get(c.Request.Context(), jwtmw.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, "history item", err)
		return
	}
	c.JSON(http.StatusOK, dto.HistoryItemResponse{Success: true, Data: toHistoryRecord(p)})
}

func historyQuery(c *gin.Context) (usecase.HistoryQuery, error) {
	limit, err := queryInt(c, "limit", usecase.DefaultHistoryLimit)
	if err != nil {
		return usecase.HistoryQuery{}, err
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return usecase.HistoryQuery{}, err
	}
	desc, err := queryBool(c, "desc", true)
	if err != nil {
		return usecase.HistoryQuery{}, err
	}
	start, err := queryDate(c, "start")
	if err != nil {
		return usecase.HistoryQuery{}, err
	}
	end, err := queryDate(c, "end")
	if err != nil {
		return usecase.HistoryQuery{}, err
	}
	return usecase.HistoryQuery{
		UserID: jwtmw.UserID(c),
		By:     entity.OrderBy(c.DefaultQuery("by", string(entity.OrderByGeneratedAt))),
		Desc:   desc,
		Start:  start,
		End:    end,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func writeCSV(c *gin.Context, data []dto.HistoryRecordResponse) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=predictions.csv")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	var err error
	if len(data) == 0 {
		err = w.Write([]string{"no", "records"})
	} else {
		err = w.Write(csvColumns)
		for _, p := range data {
			if err != nil {
				break
			}
			err = w.Write(csvRecord(p))
		}
	}
	w.Flush()
	if err == nil {
		err = w.Error()
	}
	if err != nil {
		slog.Error("failed to write history csv", "error", err)
	}
}

func csvRecord(p dto.HistoryRecordResponse) []string {
	str := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	num := func(f *float64) string {
		if f == nil {
			return ""
		}
		return strconv.FormatFloat(*f, 'f', -1, 64)
	}
	hit := ""
	if p.DirectionHit != nil {
		hit = strconv.FormatBool(*p.DirectionHit)
	}
	return []string{
		str(p.ID), str(p.GeneratedAt), p.WindowStart, p.WindowEnd, p.PredictionFor,
		num(p.LastClose), num(p.PredictedClose), p.DirectionPred, num(&p.BandLower), num(&p.BandUpper), p.Signal,
		p.ModelVersion, p.ScalerVersion, p.TickerUsed,
		num(p.ActualClose), num(p.AbsError), num(p.PctError), hit,
	}
}
