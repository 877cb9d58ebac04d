package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/shared/tradingday"
)

func num(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}

func hit(v *bool) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatBool(*v)
}

func printPrediction(w io.Writer, p entity.Prediction) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	id := p.ID
	if id == "" {
		id = "(not saved)"
	}
	fmt.Fprintf(tw, "id\t%s\n", id)
	fmt.Fprintf(tw, "window\t%s..%s\n", tradingday.Key(p.WindowStart), tradingday.Key(p.WindowEnd))
	fmt.Fprintf(tw, "prediction_for\t%s\n", tradingday.Key(p.PredictionFor))
	fmt.Fprintf(tw, "last_close\t%s\n", num(p.LastClose, 2))
	fmt.Fprintf(tw, "predicted_close\t%s\n", num(p.PredictedClose, 2))
	fmt.Fprintf(tw, "band\t%.2f..%.2f\n", p.BandLower, p.BandUpper)
	fmt.Fprintf(tw, "direction\t%s\n", p.Direction)
	fmt.Fprintf(tw, "signal\t%s\n", p.Signal)
	fmt.Fprintf(tw, "ticker_used\t%s\n", p.TickerUsed)
	_ = tw.Flush()
}

func printPoint(w io.Writer, r entity.PointResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "requested\t%s\n", tradingday.Key(r.Requested))
	fmt.Fprintf(tw, "resolved\t%s\n", tradingday.Key(r.Resolved))
	fmt.Fprintf(tw, "window\t%s..%s\n", tradingday.Key(r.WindowStart), tradingday.Key(r.WindowEnd))
	fmt.Fprintf(tw, "predicted\t%s\n", num(r.Row.Predicted, 2))
	fmt.Fprintf(tw, "actual\t%.2f\n", r.Row.Actual)
	fmt.Fprintf(tw, "signal\t%s\n", r.Row.Signal)
	fmt.Fprintf(tw, "accuracy_pct\t%s\n", num(r.AccuracyPct, 2))
	fmt.Fprintf(tw, "trade_points\t%.4f\n", r.Row.TradePoints)
	_ = tw.Flush()
}

func printReport(w io.Writer, r entity.BacktestReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "date\tpredicted\tactual\tsignal\thit\ttrade_pts\tcum_pts")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\t%.4f\t%.4f\n",
			tradingday.Key(row.Date), num(row.Predicted, 2), row.Actual, row.Signal, hit(row.DirectionHit),
			row.TradePoints, row.CumPoints)
	}
	_ = tw.Flush()

	s := r.Summary
	fmt.Fprintf(w, "\ncount=%d trades=%d MAE=%s RMSE=%s MAPE_pct=%s DA_pct=%s naive_MAE=%s total_pts=%.4f total_ret_pct=%.3f\n",
		s.Count, s.ExecutedTrades, num(s.MAE, 4), num(s.RMSE, 4), num(s.MAPEPct, 2), num(s.DirectionalAccuracyPct, 2),
		num(s.NaiveMAE, 4), s.TotalPoints, s.TotalReturnPct)
	for _, sk := range r.Skipped {
		fmt.Fprintf(w, "skipped %s: %s\n", tradingday.Key(sk.Date), sk.Reason)
	}
}
