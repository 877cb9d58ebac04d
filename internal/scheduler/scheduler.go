// Package scheduler は日次の予測・突合ジョブをcronで実行します。
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/feature/signal/usecase"
)

// jobTimeout は1回のジョブ実行の上限です。
const jobTimeout = 5 * time.Minute

// Predictor はライブ予測のユースケースです。
type Predictor interface {
	Predict(ctx context.Context, userID string) (entity.Prediction, error)
}

// Reconciler は突合のユースケースです。
type Reconciler interface {
	Reconcile(ctx context.Context, p usecase.ReconcileParams) (usecase.ReconcileResult, error)
}

// CacheInvalidator は突合前に日足キャッシュを破棄します。
type CacheInvalidator func(ctx context.Context) error

// Config はジョブのcron式です（5フィールド、ロンドン時間）。空文字のジョブは登録しません。
type Config struct {
	PredictSpec   string
	ReconcileSpec string
}

// LoadConfig は SCHEDULE_PREDICT / SCHEDULE_RECONCILE を読み込みます。
func LoadConfig() Config {
	return Config{
		PredictSpec:   os.Getenv("SCHEDULE_PREDICT"),
		ReconcileSpec: os.Getenv("SCHEDULE_RECONCILE"),
	}
}

// Enabled はいずれかのジョブが設定されている場合に true を返します。
func (c Config) Enabled() bool { return c.PredictSpec != "" || c.ReconcileSpec != "" }

// Scheduler はcronジョブを管理します。
type Scheduler struct {
	cron       *cron.Cron
	predictor  Predictor
	reconciler Reconciler
	invalidate CacheInvalidator
	ctx        context.Context
}

// New はSchedulerを生成します。invalidate は nil でも構いません。
func New(ctx context.Context, predictor Predictor, reconciler Reconciler, invalidate CacheInvalidator) *Scheduler {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		predictor:  predictor,
		reconciler: reconciler,
		invalidate: invalidate,
		ctx:        ctx,
	}
}

// Register は設定されたジョブを登録します。
func (s *Scheduler) Register(cfg Config) error {
	if cfg.PredictSpec != "" {
		if _, err := s.cron.AddFunc(cfg.PredictSpec, s.RunPredict); err != nil {
			return fmt.Errorf("register predict job: %w", err)
		}
		slog.Info("predict job registered", "spec", cfg.PredictSpec)
	}
	if cfg.ReconcileSpec != "" {
		if _, err := s.cron.AddFunc(cfg.ReconcileSpec, s.RunReconcile); err != nil {
			return fmt.Errorf("register reconcile job: %w", err)
		}
		slog.Info("reconcile job registered", "spec", cfg.ReconcileSpec)
	}
	return nil
}

// Jobs は登録済みのジョブ数を返します。
func (s *Scheduler) Jobs() int { return len(s.cron.Entries()) }

// Start はスケジューラを開始します。
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started", "jobs", s.Jobs())
}

// Stop は実行中のジョブの完了を待ってから停止します。
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunPredict はライブ予測を1回実行します（所有者なしで保存）。
func (s *Scheduler) RunPredict() {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	p, err := s.predictor.Predict(ctx, "")
	if err != nil {
		slog.Error("scheduled predict failed", "error", err)
		return
	}
	slog.Info("scheduled predict done",
		"id", p.ID, "prediction_for", p.PredictionFor.Format(time.DateOnly), "signal", string(p.Signal))
}

// RunReconcile はキャッシュを破棄してから全レコードの突合を1回実行します。
func (s *Scheduler) RunReconcile() {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	if s.invalidate != nil {
		if err := s.invalidate(ctx); err != nil {
			slog.Warn("market cache invalidation failed", "error", err)
		}
	}
	res, err := s.reconciler.Reconcile(ctx, usecase.ReconcileParams{})
	if err != nil {
		slog.Error("scheduled reconcile failed", "error", err)
		return
	}
	slog.Info("scheduled reconcile done", "updated", res.Updated, "skipped", res.Skipped, "reason", res.Reason)
}
