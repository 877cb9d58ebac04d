package usecase

import (
	"fmt"
	"math"
	"time"

	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/feature/signal/domain/entity"
)

const (
	// DefaultRollingWindow はローリング統計のデフォルト窓長（行数）です。
	DefaultRollingWindow = 7
	MinRollingWindow     = 2
	MaxRollingWindow     = 60
	// MaxCost は片道取引コスト（比率）の上限です。
	MaxCost = 0.01
)

// ValidateEvaluation はローリング窓長とコストが許容範囲内かを検証します。
func ValidateEvaluation(window int, cost float64) error {
	if window < MinRollingWindow || window > MaxRollingWindow {
		return fmt.Errorf("%w: window must be between %d and %d", domain.ErrInvalidArgument, MinRollingWindow, MaxRollingWindow)
	}
	if math.IsNaN(cost) || cost < 0 || cost > MaxCost {
		return fmt.Errorf("%w: cost must be between 0 and %g", domain.ErrInvalidArgument, MaxCost)
	}
	return nil
}

// NewBacktestRow は1日分の評価行を作ります。P&Lと累積値は Evaluate で埋めます。
func NewBacktestRow(date time.Time, prevClose, predicted, actual, bandPct float64) entity.BacktestRow {
	d := Derive(prevClose, predicted, bandPct)
	row := entity.BacktestRow{
		Date:      date,
		PrevClose: ptr(prevClose),
		Predicted: ptr(predicted),
		Actual:    actual,
		Direction: d.Direction,
		BandLower: d.BandLower,
		BandUpper: d.BandUpper,
		Signal:    d.Signal,
	}
	fillErrors(&row)
	return row
}

// fillErrors は予測値と実績値から誤差・方向一致を計算します。
func fillErrors(row *entity.BacktestRow) {
	if row.Predicted == nil {
		return
	}
	e := *row.Predicted - row.Actual
	row.Error = ptr(e)
	row.AbsError = ptr(math.Abs(e))
	if row.Actual != 0 {
		row.PctError = ptr(math.Abs(e) / math.Abs(row.Actual))
	}
	if row.PrevClose != nil {
		row.DirectionHit = ptr(DirectionHit(*row.PrevClose, *row.Predicted, row.Actual))
	}
}

// TradeOutcome は前日終値で建てて当日終値で手仕舞う1日トレードの損益を返します。
// cost は片道の取引コスト（比率）で、建玉・手仕舞いの両方に掛かります。NO_TRADE は常に0です。
func TradeOutcome(sig entity.Signal, prevClose *float64, actual, cost float64) (points, returnPct float64) {
	side := sig.Side()
	if side == 0 || prevClose == nil || *prevClose == 0 {
		return 0, 0
	}
	prev := *prevClose
	diff := actual - prev
	points = side*diff - cost*(prev+actual)
	returnPct = (side*diff/prev - 2*cost) * 100
	return points, returnPct
}

// Evaluate は行ごとの損益と累積値を埋め、ローリング統計とサマリーを計算します。
// rows は日付昇順であることを前提とし、その場で更新されます。
func Evaluate(rows []entity.BacktestRow, window int, cost float64) entity.BacktestReport {
	var cumPoints, cumReturn float64
	for i := range rows {
		p, r := TradeOutcome(rows[i].Signal, rows[i].PrevClose, rows[i].Actual, cost)
		cumPoints += p
		cumReturn += r
		rows[i].TradePoints = p
		rows[i].TradeReturnPct = r
		rows[i].CumPoints = cumPoints
		rows[i].CumReturnPct = cumReturn
	}

	report := entity.BacktestReport{
		Rows:               rows,
		RollingAccuracyPct: RollingAccuracy(rows, window),
		RollingRMSE:        RollingRMSE(rows, window),
		Summary:            Summarize(rows, window, cost),
	}
	if len(rows) > 0 {
		report.Start = rows[0].Date
		report.End = rows[len(rows)-1].Date
	}
	return report
}

// RollingAccuracy は直近 window 行の方向一致率（%）を返します。
// 先頭 window-1 行は窓が揃わないため nil です。
func RollingAccuracy(rows []entity.BacktestRow, window int) []*float64 {
	return rolling(rows, window, func(trailing []entity.BacktestRow) *float64 {
		var hits, n float64
		for _, r := range trailing {
			if r.DirectionHit == nil {
				continue
			}
			n++
			if *r.DirectionHit {
				hits++
			}
		}
		if n == 0 {
			return nil
		}
		return ptr(hits / n * 100)
	})
}

// RollingRMSE は直近 window 行のRMSEを返します。先頭 window-1 行は nil です。
func RollingRMSE(rows []entity.BacktestRow, window int) []*float64 {
	return rolling(rows, window, func(trailing []entity.BacktestRow) *float64 {
		var sq, n float64
		for _, r := range trailing {
			if r.Error == nil {
				continue
			}
			sq += *r.Error * *r.Error
			n++
		}
		if n == 0 {
			return nil
		}
		return ptr(math.Sqrt(sq / n))
	})
}

func rolling(rows []entity.BacktestRow, window int, f func([]entity.BacktestRow) *float64) []*float64 {
	out := make([]*float64, len(rows))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(rows); i++ {
		out[i] = f(rows[i-window+1 : i+1])
	}
	return out
}

// Summarize は全行の集計値を計算します。
// モデルとナイーブ予測（前日終値据え置き）の誤差は、予測値と前日終値の両方がある同一の行集合で計算します。
func Summarize(rows []entity.BacktestRow, window int, cost float64) entity.BacktestSummary {
	s := entity.BacktestSummary{Count: len(rows), Cost: cost, Window: window}

	var (
		n                       int
		absSum, sqSum           float64
		naiveAbsSum, naiveSqSum float64
		apeSum                  float64
		apeN                    int
		hits, hitN              int
	)
	for _, r := range rows {
		if r.Signal.Side() != 0 {
			s.ExecutedTrades++
		}
		s.TotalPoints += r.TradePoints
		s.TotalReturnPct += r.TradeReturnPct

		if r.DirectionHit != nil {
			hitN++
			if *r.DirectionHit {
				hits++
			}
		}
		if r.Predicted == nil || r.PrevClose == nil {
			continue
		}
		e := *r.Predicted - r.Actual
		ne := *r.PrevClose - r.Actual
		n++
		absSum += math.Abs(e)
		sqSum += e * e
		naiveAbsSum += math.Abs(ne)
		naiveSqSum += ne * ne
		if r.Actual != 0 {
			apeSum += math.Abs(e) / math.Abs(r.Actual)
			apeN++
		}
	}

	if n > 0 {
		s.MAE = ptr(absSum / float64(n))
		s.RMSE = ptr(math.Sqrt(sqSum / float64(n)))
		s.NaiveMAE = ptr(naiveAbsSum / float64(n))
		s.NaiveRMSE = ptr(math.Sqrt(naiveSqSum / float64(n)))
	}
	if apeN > 0 {
		mape := apeSum / float64(apeN) * 100
		s.MAPEPct = ptr(mape)
		s.AvgAccuracyPct = ptr(100 - mape)
	}
	if hitN > 0 {
		s.DirectionalAccuracyPct = ptr(float64(hits) / float64(hitN) * 100)
	}
	return s
}

func ptr[T any](v T) *T { return &v }
