// Package api はフィーチャー間で共有するHTTPレスポンスの型を定義します。
package api

// ErrorResponse はエラー時のレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は本文を持たない成功時のレスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}
