package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"ftse_backend/internal/feature/market/adapters/twelvedata/dto"
	"ftse_backend/internal/feature/market/domain/entity"
	"ftse_backend/internal/feature/market/usecase"
	"ftse_backend/internal/shared/ratelimiter"
	"ftse_backend/internal/shared/tradingday"
)

// SourceName はこのプロバイダを識別する名前です。
const SourceName = "twelvedata"

// maxOutputSize はTwelve Data APIが1リクエストで返す最大行数です。
const maxOutputSize = 5000

// TwelveDataMarket はTwelve Data外部APIから日足データを取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
// limiter が nil の場合は呼び出し頻度を制限しません。
func NewTwelveDataMarket(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client, limiter: limiter}
}

// FetchDaily はTwelve Data APIから [start, end] の日足を取得し、日付昇順のSeriesとして返します。
func (t *TwelveDataMarket) FetchDaily(ctx context.Context, ticker string, start, end time.Time) (entity.Series, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return entity.Series{}, fmt.Errorf("twelvedata rate limit: %w", err)
		}
	}

	symbol := ticker
	if t.cfg.Symbol != "" {
		symbol = t.cfg.Symbol
	}

	q := url.Values{}
	// クエリパラメータを追加
	q.Set("symbol", symbol)
	q.Set("interval", "1day")
	q.Set("start_date", tradingday.Key(start))
	q.Set("end_date", tradingday.Key(end))
	q.Set("outputsize", strconv.Itoa(maxOutputSize))
	q.Set("order", "ASC")
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	// URLを生成
	u := fmt.Sprintf("%s/time_series?%s", t.cfg.BaseURL, q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.Series{}, err
	}

	// リクエストを実行
	res, err := t.client.Do(req)
	if err != nil {
		return entity.Series{}, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return entity.Series{}, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return entity.Series{}, err
	}
	if body.Status == "error" {
		return entity.Series{}, fmt.Errorf("twelvedata: %s", body.Message)
	}

	bars := make([]entity.Bar, 0, len(body.Values))
	for _, v := range body.Values {
		bar, err := toBar(v)
		if err != nil {
			return entity.Series{}, err
		}
		if bar.Date.Before(tradingday.Date(start)) || bar.Date.After(tradingday.Date(end)) {
			continue
		}
		bars = append(bars, bar)
	}
	// order=ASC を無視するプランがあるため、念のため昇順に揃える
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	return entity.Series{Ticker: ticker, Source: SourceName, Bars: bars}, nil
}

// toBar は1行分のDTOをドメインエンティティに変換します。
func toBar(v dto.Value) (entity.Bar, error) {
	// タイムスタンプをパース
	tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
	if err != nil {
		tm, err = time.Parse(tradingday.Layout, v.Datetime)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse time %q: %w", v.Datetime, err)
		}
	}
	o, err := strconv.ParseFloat(v.Open, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse open %q: %w", v.Open, err)
	}
	h, err := strconv.ParseFloat(v.High, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse high %q: %w", v.High, err)
	}
	l, err := strconv.ParseFloat(v.Low, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse low %q: %w", v.Low, err)
	}
	c, err := strconv.ParseFloat(v.Close, 64)
	if err != nil {
		return entity.Bar{}, fmt.Errorf("parse close %q: %w", v.Close, err)
	}
	// 指数は出来高が空のことがあるため0として扱う
	var vol float64
	if v.Volume != "" {
		vol, err = strconv.ParseFloat(v.Volume, 64)
		if err != nil {
			return entity.Bar{}, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}
	}

	return entity.Bar{
		Date:   tradingday.Date(tm),
		Open:   o,
		High:   h,
		Low:    l,
		Close:  c,
		Volume: vol,
	}, nil
}
