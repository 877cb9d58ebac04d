// Package yahoo はYahoo Financeのチャート API（v8）から日足を取得するMarketRepository実装を提供します。
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"time"

	"ftse_backend/internal/feature/market/domain/entity"
	"ftse_backend/internal/feature/market/usecase"
	"ftse_backend/internal/shared/ratelimiter"
	"ftse_backend/internal/shared/tradingday"
)

const (
	// SourceName はこのプロバイダを識別する名前です。
	SourceName = "yahoo"
	// DefaultBaseURL はYahoo FinanceのチャートAPIのホストです。
	DefaultBaseURL = "https://query1.finance.yahoo.com"
)

// Config はYahooクライアントの設定です。
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// LoadConfig は環境変数から設定を読み込みます。
func LoadConfig() Config {
	base := os.Getenv("YAHOO_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{BaseURL: base, Timeout: 15 * time.Second}
}

// chartResponse は /v8/finance/chart のレスポンスのうち利用する部分です。
// 休場日などの欠損は null で返るため、値はポインタで受けます。
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooMarket はYahoo Financeから日足を取得します。
type YahooMarket struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

var _ usecase.MarketRepository = (*YahooMarket)(nil)

// NewYahooMarket はYahooMarketの新しいインスタンスを生成します。
func NewYahooMarket(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *YahooMarket {
	return &YahooMarket{cfg: cfg, client: client, limiter: limiter}
}

// FetchDaily は [start, end] の日足を日付昇順で返します。
func (y *YahooMarket) FetchDaily(ctx context.Context, ticker string, start, end time.Time) (entity.Series, error) {
	if y.limiter != nil {
		if err := y.limiter.Wait(ctx); err != nil {
			return entity.Series{}, fmt.Errorf("yahoo rate limit: %w", err)
		}
	}

	first := tradingday.Date(start)
	last := tradingday.Date(end)

	q := url.Values{}
	q.Set("period1", strconv.FormatInt(first.Unix(), 10))
	// period2 は排他的なので終端日の翌日0時を指定する
	q.Set("period2", strconv.FormatInt(last.AddDate(0, 0, 1).Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.cfg.BaseURL, url.PathEscape(ticker), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.Series{}, err
	}

	res, err := y.client.Do(req)
	if err != nil {
		return entity.Series{}, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return entity.Series{}, fmt.Errorf("yahoo read body: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return entity.Series{}, fmt.Errorf("yahoo http %d", res.StatusCode)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return entity.Series{}, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return entity.Series{}, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}

	series := entity.Series{Ticker: ticker, Source: SourceName}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return series, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	loc := time.UTC
	if tz := result.Meta.ExchangeTimezoneName; tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	series.Bars = make([]entity.Bar, 0, len(result.Timestamp))
	seen := make(map[string]int, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := at(quote.Close, i)
		if c == nil {
			// 休場日などの欠損行
			continue
		}
		// 取引所現地の日付に揃える
		d := tradingday.Date(time.Unix(ts, 0).In(loc))
		if d.Before(first) || d.After(last) {
			continue
		}
		bar := entity.Bar{Date: d, Close: *c}
		bar.Open = valueOr(at(quote.Open, i), *c)
		bar.High = valueOr(at(quote.High, i), *c)
		bar.Low = valueOr(at(quote.Low, i), *c)
		bar.Volume = valueOr(at(quote.Volume, i), 0)

		// 同じ日付が重複した場合は後勝ち
		key := d.Format(time.DateOnly)
		if j, ok := seen[key]; ok {
			series.Bars[j] = bar
			continue
		}
		seen[key] = len(series.Bars)
		series.Bars = append(series.Bars, bar)
	}
	sort.Slice(series.Bars, func(i, j int) bool {
		return series.Bars[i].Date.Before(series.Bars[j].Date)
	})
	return series, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
