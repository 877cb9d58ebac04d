// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

// TimeSeriesResponse represents the JSON response from the Twelve Data time_series endpoint.
type TimeSeriesResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	Code    int     `json:"code,omitempty"`
	Meta    Meta    `json:"meta"`
	Values  []Value `json:"values"`
}

// Meta describes the instrument the values belong to.
type Meta struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Exchange string `json:"exchange"`
}

// Value is one row of the time series. Every field is a decimal string;
// indices often report an empty or missing volume.
type Value struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume"`
}
