// Package metrics はPrometheusメトリクスの収集と公開を提供します。
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ftse_backend/internal/feature/signal/domain/entity"
)

const namespace = "ftse"

// Registry はアプリケーション固有のメトリクスを保持します。
// シグナル系ユースケースの Observer としても振る舞います。
type Registry struct {
	reg *prometheus.Registry

	predictions      *prometheus.CounterVec
	backtests        *prometheus.CounterVec
	backtestRows     *prometheus.CounterVec
	backtestSkipped  *prometheus.CounterVec
	reconcileRuns    *prometheus.CounterVec
	reconcileRecords *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewRegistry は新しいRegistryを生成し、Goランタイムとプロセスのコレクタも登録します。
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "predictions_total", Help: "Live predictions issued"},
			[]string{"signal", "saved"},
		),
		backtests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "backtests_total", Help: "Backtest evaluations completed"},
			[]string{"mode"},
		),
		backtestRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "backtest_rows_total", Help: "Trading days evaluated by backtests"},
			[]string{"mode"},
		),
		backtestSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "backtest_skipped_total", Help: "Trading days skipped by backtests"},
			[]string{"mode"},
		),
		reconcileRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "reconcile_runs_total", Help: "Reconcile and repair runs"},
			[]string{"op"},
		),
		reconcileRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "reconcile_records_total", Help: "Prediction records touched by reconcile and repair"},
			[]string{"op", "result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests served"},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency", Buckets: prometheus.DefBuckets},
			[]string{"method", "route"},
		),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.predictions, r.backtests, r.backtestRows, r.backtestSkipped,
		r.reconcileRuns, r.reconcileRecords, r.httpRequests, r.httpDuration,
	)
	return r
}

// PredictionIssued はライブ予測の発行を記録します。
func (r *Registry) PredictionIssued(signal entity.Signal, saved bool) {
	r.predictions.WithLabelValues(string(signal), strconv.FormatBool(saved)).Inc()
}

// BacktestCompleted はバックテストの完了を記録します。
func (r *Registry) BacktestCompleted(mode string, rows, skipped int) {
	r.backtests.WithLabelValues(mode).Inc()
	r.backtestRows.WithLabelValues(mode).Add(float64(rows))
	r.backtestSkipped.WithLabelValues(mode).Add(float64(skipped))
}

// ReconcileCompleted は突合・修復の完了を記録します。
func (r *Registry) ReconcileCompleted(op string, updated, skipped int) {
	r.reconcileRuns.WithLabelValues(op).Inc()
	r.reconcileRecords.WithLabelValues(op, "updated").Add(float64(updated))
	r.reconcileRecords.WithLabelValues(op, "skipped").Add(float64(skipped))
}

// Middleware はリクエスト数とレイテンシを記録するginミドルウェアです。
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler は /metrics 用のginハンドラを返します。
func (r *Registry) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
