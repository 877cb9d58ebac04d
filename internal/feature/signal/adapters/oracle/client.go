package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"

	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/feature/signal/usecase"
)

type predictRequest struct {
	Instances [][][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error"`
}

// Client はTF-Serving REST APIで翌営業日の終値を予測するForecaster実装です。
type Client struct {
	cfg    Config
	client *http.Client
	scaler *scalerLoader
}

// ClientがForecasterを実装していることをコンパイル時に検証します。
var _ usecase.Forecaster = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
// スケーラーは最初の予測時に読み込まれます。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client, scaler: newScalerLoader(cfg.ScalerPath)}
}

// Predict はウィンドウを正規化して推論サーバーに送り、終値の予測値を元のスケールで返します。
// 失敗はすべて ErrInferenceFailed でラップされます。
func (c *Client) Predict(ctx context.Context, window entity.FeatureWindow) (float64, error) {
	if window.Len() == 0 {
		return 0, fmt.Errorf("%w: empty window", domain.ErrInferenceFailed)
	}
	scaler, err := c.scaler.Get()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInferenceFailed, err)
	}

	body, err := json.Marshal(predictRequest{Instances: [][][]float64{scaler.Transform(window.Rows)}})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInferenceFailed, err)
	}

	u := fmt.Sprintf("%s/v1/models/%s:predict", c.cfg.URL, url.PathEscape(c.cfg.Model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInferenceFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInferenceFailed, err)
	}
	defer func() {
		if cerr := res.Body.Close(); cerr != nil {
			slog.Warn("failed to close oracle response body", "error", cerr)
		}
	}()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return 0, fmt.Errorf("%w: oracle http %d: %s", domain.ErrInferenceFailed, res.StatusCode, bytes.TrimSpace(msg))
	}

	var out predictResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: oracle decode: %w", domain.ErrInferenceFailed, err)
	}
	if out.Error != "" {
		return 0, fmt.Errorf("%w: oracle: %s", domain.ErrInferenceFailed, out.Error)
	}
	if len(out.Predictions) == 0 || len(out.Predictions[0]) == 0 {
		return 0, fmt.Errorf("%w: oracle returned no prediction", domain.ErrInferenceFailed)
	}

	y := scaler.InverseClose(out.Predictions[0][0])
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("%w: oracle returned non-finite value", domain.ErrInferenceFailed)
	}
	return y, nil
}

// Disabled は推論サーバーが設定されていない場合のForecasterです。常に ErrInferenceFailed を返します。
type Disabled struct{}

var _ usecase.Forecaster = Disabled{}

// Predict always fails.
func (Disabled) Predict(context.Context, entity.FeatureWindow) (float64, error) {
	return 0, fmt.Errorf("%w: oracle is not configured", domain.ErrInferenceFailed)
}
