package dto

// BacktestRowResponse は評価1行のレスポンスDTOです。
type BacktestRowResponse struct {
	PredictionFor  string   `json:"prediction_for"`
	ID             string   `json:"id,omitempty"` // 保存済みレコードの評価時のみ
	LastClose      *float64 `json:"last_close"`
	PredictedClose *float64 `json:"predicted_close"`
	ActualClose    float64  `json:"actual_close"`
	Direction      string   `json:"direction,omitempty"`
	BandLower      float64  `json:"band_lower"`
	BandUpper      float64  `json:"band_upper"`
	Signal         string   `json:"signal"`
	DirectionHit   *bool    `json:"direction_hit"`
	Error          *float64 `json:"error"`
	AbsError       *float64 `json:"abs_error"`
	PctError       *float64 `json:"pct_error"`
	TradePoints    float64  `json:"trade_points"`
	TradeReturnPct float64  `json:"trade_return_pct"`
	CumPoints      float64  `json:"cum_pl_points"`
	CumReturnPct   float64  `json:"cum_return_pct"`
}

// SummaryResponse は評価全体の集計です。
type SummaryResponse struct {
	Count                  int      `json:"count"`
	ExecutedTrades         int      `json:"executed_trades"`
	MAE                    *float64 `json:"MAE"`
	RMSE                   *float64 `json:"RMSE"`
	MAPEPct                *float64 `json:"MAPE_pct"`
	AvgAccuracyPct         *float64 `json:"Avg_Accuracy_pct"`
	DirectionalAccuracyPct *float64 `json:"Directional_Accuracy_pct"`
	NaiveMAE               *float64 `json:"Naive_MAE"`
	NaiveRMSE              *float64 `json:"Naive_RMSE"`
	TotalPoints            float64  `json:"Total_PL_points"`
	TotalReturnPct         float64  `json:"Total_Return_pct"`
	Cost                   float64  `json:"Per_Side_Cost"`
	Window                 int      `json:"Window"`
}

// SeriesResponse はグラフ描画用の系列です。各系列は行と同じ長さです。
type SeriesResponse struct {
	Dates              []string   `json:"dates"`
	CumPoints          []float64  `json:"cum_pl_points"`
	CumReturnPct       []float64  `json:"cum_return_pct"`
	RollingAccuracyPct []*float64 `json:"rolling_directional_accuracy_pct"`
	RollingRMSE        []*float64 `json:"rolling_rmse"`
}

// SkippedDayResponse は評価できなかった日です。
type SkippedDayResponse struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// BacktestResponse は /backtest と /backtest/range のレスポンスDTOです。
type BacktestResponse struct {
	Success bool                  `json:"success"`
	Start   string                `json:"start,omitempty"`
	End     string                `json:"end,omitempty"`
	Summary SummaryResponse       `json:"summary"`
	Series  SeriesResponse        `json:"series"`
	Table   []BacktestRowResponse `json:"table"`
	Skipped []SkippedDayResponse  `json:"skipped"`
}

// PointResponse は /backtest/point のレスポンスDTOです。
type PointResponse struct {
	Success       bool                `json:"success"`
	RequestedDate string              `json:"requested_date"`
	ResolvedDate  string              `json:"resolved_date"`
	WindowStart   string              `json:"window_start"`
	WindowEnd     string              `json:"window_end"`
	AccuracyPct   *float64            `json:"accuracy_pct"`
	Row           BacktestRowResponse `json:"row"`
}
