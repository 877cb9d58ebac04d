package dto

// BarResponse は日足1本のレスポンスDTOです。
type BarResponse struct {
	Date   string  `json:"date"`   // 日付（YYYY-MM-DD）
	Open   float64 `json:"open"`   // 始値
	High   float64 `json:"high"`   // 高値
	Low    float64 `json:"low"`    // 安値
	Close  float64 `json:"close"`  // 終値
	Volume float64 `json:"volume"` // 出来高
}

// OHLCResponse は /ohlc のレスポンスDTOです。
type OHLCResponse struct {
	Rows       []BarResponse `json:"rows"`
	TickerUsed string        `json:"ticker_used"`
	Source     string        `json:"source"` // データを返したプロバイダ
}
