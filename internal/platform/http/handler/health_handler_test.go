package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestHealth_Methods(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.GET("/healthz", Health)
	r.HEAD("/healthz", Health)
	r.OPTIONS("/healthz", Health)

	tests := []struct {
		method     string
		wantStatus int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodHead, http.StatusOK},
		{http.MethodOptions, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
			if tt.method == http.MethodGet {
				assert.JSONEq(t, `{"status":"ok","service":"ftse-api"}`, w.Body.String())
			} else {
				assert.Zero(t, w.Body.Len())
			}
		})
	}
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name       string
		checks     []Check
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "no dependencies",
			wantStatus: "ok",
			wantChecks: map[string]string{},
		},
		{
			name:       "all healthy",
			checks:     []Check{{Name: "store", Ping: ok}, {Name: "redis", Ping: ok}},
			wantStatus: "ok",
			wantChecks: map[string]string{"store": "ok", "redis": "ok"},
		},
		{
			name:       "store down, redis disabled",
			checks:     []Check{{Name: "store", Ping: down}, {Name: "redis"}},
			wantStatus: "degraded",
			wantChecks: map[string]string{"store": "dial tcp: connection refused", "redis": "disabled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := gin.New()
			r.GET("/health", Readiness(tt.checks...))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, http.StatusOK, w.Code)
			var body struct {
				Status  string            `json:"status"`
				Service string            `json:"service"`
				Checks  map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, ServiceName, body.Service)
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}
