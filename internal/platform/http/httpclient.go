package http

import (
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent は外部API呼び出し時に付与するUser-Agentです。
// Yahoo/Stooq はUser-Agentのないリクエストを拒否することがあります。
const DefaultUserAgent = "Mozilla/5.0 (compatible; ftse-backend/1.0)"

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - MaxIdleConns: 最大アイドル接続数
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//   - userAgent: 空でなければ、未設定のリクエストに付与
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にカスタムクライアントを使用すること
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	var rt http.RoundTripper = t
	if userAgent != "" {
		rt = &userAgentTransport{next: t, userAgent: userAgent}
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

// userAgentTransport はUser-Agentヘッダーが未設定のリクエストに既定値を付与します。
type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", u.userAgent)
	return u.next.RoundTrip(r)
}
