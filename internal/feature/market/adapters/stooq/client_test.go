package stooq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStooqMarket_FetchDaily(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		body      string
		wantBars  int
		wantClose []float64
		wantVol   []float64
		wantErr   bool
	}{
		{
			name: "with volume",
			body: "Date,Open,High,Low,Close,Volume\n" +
				"2024-01-03,7700,7710,7680,7682.3,100\n" +
				"2024-01-04,7682,7730,7680,7723.1,200\n" +
				"2024-01-05,7723,7740,7670,7689.6,300\n" +
				"2024-01-08,7690,7720,7650,7694.2,\n",
			wantBars:  3,
			wantClose: []float64{7723.1, 7689.6, 7694.2},
			wantVol:   []float64{200, 300, 0},
		},
		{
			name: "without volume column",
			body: "Date,Open,High,Low,Close\n" +
				"2024-01-05,7723,7740,7670,7689.6\n",
			wantBars:  1,
			wantClose: []float64{7689.6},
			wantVol:   []float64{0},
		},
		{
			name:     "no data body",
			body:     "No data",
			wantBars: 0,
		},
		{
			name:     "empty body",
			body:     "",
			wantBars: 0,
		},
		{
			name:    "bad number",
			body:    "Date,Open,High,Low,Close\n2024-01-05,x,7740,7670,7689.6\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/q/d/l/", r.URL.Path)
				assert.Equal(t, "ukx", r.URL.Query().Get("s"))
				assert.Equal(t, "20240104", r.URL.Query().Get("d1"))
				assert.Equal(t, "20240108", r.URL.Query().Get("d2"))
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			market := NewStooqMarket(Config{BaseURL: server.URL, Symbol: "ukx"}, server.Client(), nil)
			series, err := market.FetchDaily(context.Background(), "^FTSE", start, end)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, SourceName, series.Source)
			require.Len(t, series.Bars, tt.wantBars)
			for i := range series.Bars {
				assert.InDelta(t, tt.wantClose[i], series.Bars[i].Close, 1e-9)
				assert.InDelta(t, tt.wantVol[i], series.Bars[i].Volume, 1e-9)
			}
		})
	}
}

func TestStooqMarket_FetchDaily_HTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	market := NewStooqMarket(Config{BaseURL: server.URL, Symbol: "ukx"}, server.Client(), nil)
	_, err := market.FetchDaily(context.Background(), "^FTSE", time.Now().AddDate(0, 0, -3), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stooq http 502")
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STOOQ_BASE_URL", "")
	t.Setenv("STOOQ_SYMBOL", "")

	cfg := LoadConfig()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultSymbol, cfg.Symbol)
}
