package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftse_backend/internal/feature/signal/domain"
	"ftse_backend/internal/feature/signal/domain/entity"
)

func writeScaler(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scaler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScalerYAML), 0o600))
	return path
}

func testWindow() entity.FeatureWindow {
	return entity.FeatureWindow{
		Start: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		Rows: [][5]float64{
			{7500, 7600, 7400, 7500, 0},
			{7600, 7700, 7500, 7550, 0},
		},
	}
}

func TestClient_Predict(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotReq predictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"predictions": [[0.68]]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{URL: srv.URL, Model: "ftse_lstm", ScalerPath: writeScaler(t)}, srv.Client())

	got, err := c.Predict(context.Background(), testWindow())
	require.NoError(t, err)

	assert.InDelta(t, 7680.0, got, 1e-9)
	assert.Equal(t, "/v1/models/ftse_lstm:predict", gotPath)
	require.Len(t, gotReq.Instances, 1)
	require.Len(t, gotReq.Instances[0], 2)
	assert.InDeltaSlice(t, []float64{0.6, 0.6, 0.6, 0.55, 0}, gotReq.Instances[0][1], 1e-12)
}

func TestClient_Predict_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		window  entity.FeatureWindow
		noScale bool
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", window: testWindow()},
		{name: "error field", status: http.StatusOK, body: `{"error": "model not loaded"}`, window: testWindow()},
		{name: "empty predictions", status: http.StatusOK, body: `{"predictions": []}`, window: testWindow()},
		{name: "invalid json", status: http.StatusOK, body: `{`, window: testWindow()},
		{name: "empty window", status: http.StatusOK, body: `{"predictions": [[0.5]]}`},
		{name: "scaler missing", status: http.StatusOK, body: `{"predictions": [[0.5]]}`, window: testWindow(), noScale: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			path := filepath.Join(t.TempDir(), "missing.yaml")
			if !tt.noScale {
				path = writeScaler(t)
			}
			c := NewClient(Config{URL: srv.URL, Model: "m", ScalerPath: path}, srv.Client())

			_, err := c.Predict(context.Background(), tt.window)
			assert.ErrorIs(t, err, domain.ErrInferenceFailed)
		})
	}
}

func TestClient_Predict_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{URL: url, Model: "m", ScalerPath: writeScaler(t)}, &http.Client{Timeout: time.Second})
	_, err := c.Predict(context.Background(), testWindow())
	assert.ErrorIs(t, err, domain.ErrInferenceFailed)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("ORACLE_URL", "http://oracle:8501")
	t.Setenv("ORACLE_MODEL", "")
	t.Setenv("ORACLE_SCALER_PATH", "/etc/ftse/scaler.yaml")

	cfg := LoadConfig()

	assert.True(t, cfg.Enabled())
	assert.Equal(t, "http://oracle:8501", cfg.URL)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, "/etc/ftse/scaler.yaml", cfg.ScalerPath)
}

func TestDisabled_Predict(t *testing.T) {
	t.Parallel()

	_, err := Disabled{}.Predict(context.Background(), testWindow())
	assert.ErrorIs(t, err, domain.ErrInferenceFailed)
}
