// Package stooq はStooqの日足CSVダウンロードから日足を取得するMarketRepository実装を提供します。
package stooq

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"ftse_backend/internal/feature/market/domain/entity"
	"ftse_backend/internal/feature/market/usecase"
	"ftse_backend/internal/shared/ratelimiter"
	"ftse_backend/internal/shared/tradingday"
)

const (
	// SourceName はこのプロバイダを識別する名前です。
	SourceName = "stooq"
	// DefaultBaseURL はStooqのホストです。
	DefaultBaseURL = "https://stooq.com"
	// DefaultSymbol はFTSE 100のStooqシンボルです。
	DefaultSymbol = "ukx"
)

// Config はStooqクライアントの設定です。
type Config struct {
	BaseURL string
	Symbol  string // 要求されたティッカーの代わりに使うシンボル
	Timeout time.Duration
}

// LoadConfig は環境変数から設定を読み込みます。
func LoadConfig() Config {
	cfg := Config{
		BaseURL: os.Getenv("STOOQ_BASE_URL"),
		Symbol:  os.Getenv("STOOQ_SYMBOL"),
		Timeout: 15 * time.Second,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Symbol == "" {
		cfg.Symbol = DefaultSymbol
	}
	return cfg
}

// StooqMarket はStooqのCSVエンドポイントから日足を取得します。
type StooqMarket struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

var _ usecase.MarketRepository = (*StooqMarket)(nil)

// NewStooqMarket はStooqMarketの新しいインスタンスを生成します。
func NewStooqMarket(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *StooqMarket {
	return &StooqMarket{cfg: cfg, client: client, limiter: limiter}
}

// FetchDaily は [start, end] の日足を日付昇順で返します。
// Stooqはデータがない場合にCSVではなく "No data" を返すため、その場合は空のSeriesになります。
func (s *StooqMarket) FetchDaily(ctx context.Context, ticker string, start, end time.Time) (entity.Series, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return entity.Series{}, fmt.Errorf("stooq rate limit: %w", err)
		}
	}

	symbol := s.cfg.Symbol
	if symbol == "" {
		symbol = strings.ToLower(ticker)
	}
	q := url.Values{}
	q.Set("s", symbol)
	q.Set("i", "d")
	q.Set("d1", tradingday.Date(start).Format("20060102"))
	q.Set("d2", tradingday.Date(end).Format("20060102"))
	u := fmt.Sprintf("%s/q/d/l/?%s", s.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return entity.Series{}, err
	}
	res, err := s.client.Do(req)
	if err != nil {
		return entity.Series{}, fmt.Errorf("stooq fetch: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()
	if res.StatusCode != http.StatusOK {
		return entity.Series{}, fmt.Errorf("stooq http %d", res.StatusCode)
	}

	bars, err := parseCSV(res.Body, tradingday.Date(start), tradingday.Date(end))
	if err != nil {
		return entity.Series{}, err
	}
	return entity.Series{Ticker: ticker, Source: SourceName, Bars: bars}, nil
}

// parseCSV は "Date,Open,High,Low,Close[,Volume]" 形式のCSVを読み込みます。
func parseCSV(r io.Reader, first, last time.Time) ([]entity.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stooq read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"date", "open", "high", "low", "close"} {
		if _, ok := cols[name]; !ok {
			// "No data" などCSVでない応答
			return nil, nil
		}
	}
	volIdx, hasVolume := cols["volume"]

	var bars []entity.Bar
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("stooq read row: %w", err)
		}
		d, err := tradingday.Parse(field(rec, cols["date"]))
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", field(rec, cols["date"]), err)
		}
		if d.Before(first) || d.After(last) {
			continue
		}
		var bar entity.Bar
		bar.Date = d
		targets := []struct {
			name string
			dst  *float64
		}{
			{"open", &bar.Open},
			{"high", &bar.High},
			{"low", &bar.Low},
			{"close", &bar.Close},
		}
		skip := false
		for _, tgt := range targets {
			raw := field(rec, cols[tgt.name])
			if raw == "" {
				skip = true
				break
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %s %q: %w", tgt.name, raw, err)
			}
			*tgt.dst = v
		}
		if skip {
			continue
		}
		if hasVolume {
			if raw := field(rec, volIdx); raw != "" {
				if v, err := strconv.ParseFloat(raw, 64); err == nil {
					bar.Volume = v
				}
			}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
