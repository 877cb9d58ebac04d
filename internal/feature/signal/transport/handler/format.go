package handler

import (
	"math"
	"time"

	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/feature/signal/transport/http/dto"
	"ftse_backend/internal/shared/tradingday"
)

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

func roundPtr(x *float64, places int) *float64 {
	if x == nil {
		return nil
	}
	v := round(*x, places)
	return &v
}

func roundAll(xs []*float64, places int) []*float64 {
	out := make([]*float64, len(xs))
	for i, x := range xs {
		out[i] = roundPtr(x, places)
	}
	return out
}

// toHistoryRecord は保存済みレコードをテーブルと同じ列名のDTOに変換します。
func toHistoryRecord(p entity.Prediction) dto.HistoryRecordResponse {
	r := toPredictionResponse(p)
	return dto.HistoryRecordResponse{
		ID:             r.ID,
		GeneratedAt:    r.GeneratedAt,
		WindowStart:    r.WindowStart,
		WindowEnd:      r.WindowEnd,
		PredictionFor:  r.PredictionFor,
		LastClose:      r.LastClose,
		PredictedClose: r.PredictedClose,
		DirectionPred:  r.Direction,
		BandLower:      r.BandLower,
		BandUpper:      r.BandUpper,
		Signal:         r.Signal,
		ModelVersion:   r.ModelVersion,
		ScalerVersion:  r.ScalerVersion,
		TickerUsed:     r.TickerUsed,
		ActualClose:    r.ActualClose,
		AbsError:       r.AbsError,
		PctError:       r.PctError,
		DirectionHit:   r.DirectionHit,
	}
}

func toPredictionResponse(p entity.Prediction) dto.PredictionResponse {
	res := dto.PredictionResponse{
		WindowStart:    tradingday.Key(p.WindowStart),
		WindowEnd:      tradingday.Key(p.WindowEnd),
		PredictionFor:  tradingday.Key(p.PredictionFor),
		LastClose:      p.LastClose,
		PredictedClose: p.PredictedClose,
		Direction:      string(p.Direction),
		BandLower:      p.BandLower,
		BandUpper:      p.BandUpper,
		Signal:         string(p.Signal),
		ModelVersion:   p.ModelVersion,
		ScalerVersion:  p.ScalerVersion,
		TickerUsed:     p.TickerUsed,
		ActualClose:    p.ActualClose,
		AbsError:       p.AbsError,
		PctError:       p.PctError,
		DirectionHit:   p.DirectionHit,
	}
	if p.ID != "" {
		id := p.ID
		res.ID = &id
	}
	if !p.GeneratedAt.IsZero() {
		at := p.GeneratedAt.UTC().Format(time.RFC3339)
		res.GeneratedAt = &at
	}
	return res
}

func toRowResponse(r entity.BacktestRow) dto.BacktestRowResponse {
	return dto.BacktestRowResponse{
		PredictionFor:  tradingday.Key(r.Date),
		ID:             r.ID,
		LastClose:      r.PrevClose,
		PredictedClose: r.Predicted,
		ActualClose:    r.Actual,
		Direction:      string(r.Direction),
		BandLower:      r.BandLower,
		BandUpper:      r.BandUpper,
		Signal:         string(r.Signal),
		DirectionHit:   r.DirectionHit,
		Error:          r.Error,
		AbsError:       r.AbsError,
		PctError:       r.PctError,
		TradePoints:    round(r.TradePoints, 4),
		TradeReturnPct: round(r.TradeReturnPct, 3),
		CumPoints:      round(r.CumPoints, 4),
		CumReturnPct:   round(r.CumReturnPct, 3),
	}
}

func toSummaryResponse(s entity.BacktestSummary) dto.SummaryResponse {
	return dto.SummaryResponse{
		Count:                  s.Count,
		ExecutedTrades:         s.ExecutedTrades,
		MAE:                    roundPtr(s.MAE, 4),
		RMSE:                   roundPtr(s.RMSE, 4),
		MAPEPct:                roundPtr(s.MAPEPct, 2),
		AvgAccuracyPct:         roundPtr(s.AvgAccuracyPct, 2),
		DirectionalAccuracyPct: roundPtr(s.DirectionalAccuracyPct, 2),
		NaiveMAE:               roundPtr(s.NaiveMAE, 4),
		NaiveRMSE:              roundPtr(s.NaiveRMSE, 4),
		TotalPoints:            round(s.TotalPoints, 4),
		TotalReturnPct:         round(s.TotalReturnPct, 3),
		Cost:                   s.Cost,
		Window:                 s.Window,
	}
}

func toBacktestResponse(r entity.BacktestReport) dto.BacktestResponse {
	res := dto.BacktestResponse{
		Success: true,
		Summary: toSummaryResponse(r.Summary),
		Series: dto.SeriesResponse{
			Dates:              make([]string, len(r.Rows)),
			CumPoints:          make([]float64, len(r.Rows)),
			CumReturnPct:       make([]float64, len(r.Rows)),
			RollingAccuracyPct: roundAll(r.RollingAccuracyPct, 2),
			RollingRMSE:        roundAll(r.RollingRMSE, 4),
		},
		Table:   make([]dto.BacktestRowResponse, len(r.Rows)),
		Skipped: make([]dto.SkippedDayResponse, len(r.Skipped)),
	}
	if !r.Start.IsZero() {
		res.Start = tradingday.Key(r.Start)
	}
	if !r.End.IsZero() {
		res.End = tradingday.Key(r.End)
	}
	for i, row := range r.Rows {
		res.Table[i] = toRowResponse(row)
		res.Series.Dates[i] = res.Table[i].PredictionFor
		res.Series.CumPoints[i] = res.Table[i].CumPoints
		res.Series.CumReturnPct[i] = res.Table[i].CumReturnPct
	}
	for i, s := range r.Skipped {
		res.Skipped[i] = dto.SkippedDayResponse{Date: tradingday.Key(s.Date), Reason: s.Reason}
	}
	return res
}

func toPointResponse(p entity.PointResult) dto.PointResponse {
	return dto.PointResponse{
		Success:       true,
		RequestedDate: tradingday.Key(p.Requested),
		ResolvedDate:  tradingday.Key(p.Resolved),
		WindowStart:   tradingday.Key(p.WindowStart),
		WindowEnd:     tradingday.Key(p.WindowEnd),
		AccuracyPct:   roundPtr(p.AccuracyPct, 2),
		Row:           toRowResponse(p.Row),
	}
}
