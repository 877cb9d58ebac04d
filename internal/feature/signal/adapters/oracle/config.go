// Package oracle は外部の推論サーバー（TF-Serving REST 形式）を使った終値予測を提供します。
package oracle

import (
	"os"
	"time"
)

const (
	// DefaultModel はモデル名のデフォルトです。
	DefaultModel = "ftse_lstm"
	// DefaultScalerPath はMinMaxスケーラーのYAMLファイルのデフォルトのパスです。
	DefaultScalerPath = "models/scaler.yaml"
)

// Config holds configuration for the inference client.
type Config struct {
	URL        string        // Base URL of the model server (e.g., "http://localhost:8501")
	Model      string        // Model name served under /v1/models/{Model}
	ScalerPath string        // YAML file with per-column min/max
	Timeout    time.Duration // HTTP request timeout
}

// Enabled reports whether a model server is configured.
func (c Config) Enabled() bool { return c.URL != "" }

// LoadConfig loads oracle configuration from environment variables.
func LoadConfig() Config {
	model := os.Getenv("ORACLE_MODEL")
	if model == "" {
		model = DefaultModel
	}
	scaler := os.Getenv("ORACLE_SCALER_PATH")
	if scaler == "" {
		scaler = DefaultScalerPath
	}
	return Config{
		URL:        os.Getenv("ORACLE_URL"),
		Model:      model,
		ScalerPath: scaler,
		Timeout:    15 * time.Second,
	}
}
