package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ftse_backend/internal/app/di"
	"ftse_backend/internal/app/router"
	jwtmw "ftse_backend/internal/platform/jwt"
	"ftse_backend/internal/scheduler"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := di.Build(ctx)
	if err != nil {
		slog.Error("failed to initialise dependencies", "error", err)
		os.Exit(1)
	}
	defer c.Close()

	// スケジューラ
	var sched *scheduler.Scheduler
	if cfg := scheduler.LoadConfig(); cfg.Enabled() {
		sched = scheduler.New(ctx, c.Predict, c.Reconcile, c.InvalidateMarketCache)
		if err := sched.Register(cfg); err != nil {
			slog.Error("failed to register scheduled jobs", "error", err)
			os.Exit(1)
		}
		sched.Start()
	}

	// ルータ生成
	r := router.NewRouter(c.Handlers, c.Metrics, router.CORSOrigins())

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		slog.Warn("JWT_SECRET is not set. Protected endpoints will reject every request.")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	if sched != nil {
		sched.Stop()
	}
}
