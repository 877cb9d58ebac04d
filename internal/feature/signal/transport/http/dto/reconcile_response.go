package dto

// ReconcileResponse は /reconcile のレスポンスDTOです。
type ReconcileResponse struct {
	Success bool   `json:"success"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}

// RepairResponse は /repair_prediction_for のレスポンスDTOです。
type RepairResponse struct {
	Success bool `json:"success"`
	Fixed   int  `json:"fixed"`
	Skipped int  `json:"skipped"`
}
