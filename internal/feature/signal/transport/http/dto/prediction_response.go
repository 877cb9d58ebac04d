package dto

// PredictionResponse は予測レコード1件のレスポンスDTOです。
// 保存されなかった場合 ID と GeneratedAt は null になります。
type PredictionResponse struct {
	ID          *string `json:"id"`
	GeneratedAt *string `json:"generated_at"` // RFC 3339

	WindowStart   string `json:"window_start"`
	WindowEnd     string `json:"window_end"`
	PredictionFor string `json:"prediction_for"`

	LastClose      *float64 `json:"last_close"`
	PredictedClose *float64 `json:"predicted_close"`
	Direction      string   `json:"direction"`
	BandLower      float64  `json:"band_lower"`
	BandUpper      float64  `json:"band_upper"`
	Signal         string   `json:"signal"`
	ModelVersion   string   `json:"model_version"`
	ScalerVersion  string   `json:"scaler_version"`
	TickerUsed     string   `json:"ticker_used"`

	ActualClose  *float64 `json:"actual_close"`
	AbsError     *float64 `json:"abs_error"`
	PctError     *float64 `json:"pct_error"`
	DirectionHit *bool    `json:"direction_hit"`
}

// HistoryRecordResponse は保存済みレコード1件のDTOです。
// 列名は predictions テーブルと同じで、方向は direction_pred として返します。
type HistoryRecordResponse struct {
	ID          *string `json:"id"`
	GeneratedAt *string `json:"generated_at"` // RFC 3339

	WindowStart   string `json:"window_start"`
	WindowEnd     string `json:"window_end"`
	PredictionFor string `json:"prediction_for"`

	LastClose      *float64 `json:"last_close"`
	PredictedClose *float64 `json:"predicted_close"`
	DirectionPred  string   `json:"direction_pred"`
	BandLower      float64  `json:"band_lower"`
	BandUpper      float64  `json:"band_upper"`
	Signal         string   `json:"signal"`
	ModelVersion   string   `json:"model_version"`
	ScalerVersion  string   `json:"scaler_version"`
	TickerUsed     string   `json:"ticker_used"`

	ActualClose  *float64 `json:"actual_close"`
	AbsError     *float64 `json:"abs_error"`
	PctError     *float64 `json:"pct_error"`
	DirectionHit *bool    `json:"direction_hit"`
}

// HistoryResponse は /history のレスポンスDTOです。
type HistoryResponse struct {
	Success bool                    `json:"success"`
	Count   int                     `json:"count"`
	Offset  int                     `json:"offset"`
	Limit   int                     `json:"limit"`
	Data    []HistoryRecordResponse `json:"data"`
}

// HistoryItemResponse は /history/:id のレスポンスDTOです。
type HistoryItemResponse struct {
	Success bool                  `json:"success"`
	Data    HistoryRecordResponse `json:"data"`
}
