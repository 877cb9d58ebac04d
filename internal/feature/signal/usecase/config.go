package usecase

import (
	"log/slog"
	"os"
	"strconv"

	marketusecase "ftse_backend/internal/feature/market/usecase"
)

const (
	// DefaultLookback は特徴量ウィンドウの長さ（営業日数）です。
	DefaultLookback = 60
	// DefaultBandPct はシグナル確定に使う信頼バンドの幅（%）です。
	DefaultBandPct = 1.0
	// DefaultLiveDays はライブ予測で取得する日数（暦日）です。
	DefaultLiveDays = 120
	// DefaultModelVersion は予測モデルのバージョン名です。
	DefaultModelVersion = "lstm_h5_v1"
	// DefaultScalerVersion はスケーラーのバージョン名です。
	DefaultScalerVersion = "minmax_v1"
)

// Config はシグナル系ユースケースの共通設定です。
type Config struct {
	Ticker        string
	Lookback      int
	BandPct       float64
	LiveDays      int
	ModelVersion  string
	ScalerVersion string
}

// DefaultConfig はデフォルト値の設定を返します。
func DefaultConfig() Config {
	return Config{
		Ticker:        marketusecase.DefaultTicker,
		Lookback:      DefaultLookback,
		BandPct:       DefaultBandPct,
		LiveDays:      DefaultLiveDays,
		ModelVersion:  DefaultModelVersion,
		ScalerVersion: DefaultScalerVersion,
	}
}

// LoadConfig は環境変数から設定を読み込みます。不正な値はデフォルトに戻します。
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("MARKET_TICKER"); v != "" {
		cfg.Ticker = v
	}
	if v := os.Getenv("MODEL_VERSION"); v != "" {
		cfg.ModelVersion = v
	}
	if v := os.Getenv("SCALER_VERSION"); v != "" {
		cfg.ScalerVersion = v
	}
	if v := os.Getenv("LOOKBACK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Lookback = n
		} else {
			slog.Warn("invalid LOOKBACK, using default", "value", v, "default", cfg.Lookback)
		}
	}
	if v := os.Getenv("BAND_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.BandPct = f
		} else {
			slog.Warn("invalid BAND_PCT, using default", "value", v, "default", cfg.BandPct)
		}
	}
	return cfg
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.Ticker == "" {
		c.Ticker = d.Ticker
	}
	if c.Lookback <= 0 {
		c.Lookback = d.Lookback
	}
	if c.BandPct < 0 {
		c.BandPct = d.BandPct
	}
	if c.LiveDays <= 0 {
		c.LiveDays = d.LiveDays
	}
	if c.ModelVersion == "" {
		c.ModelVersion = d.ModelVersion
	}
	if c.ScalerVersion == "" {
		c.ScalerVersion = d.ScalerVersion
	}
	return c
}
