// signalctl はシグナル系ユースケースを手動で実行する運用CLIです。
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ftse_backend/internal/app/di"
	"ftse_backend/internal/feature/signal/domain/entity"
	"ftse_backend/internal/feature/signal/usecase"
)

type predictor interface {
	Predict(ctx context.Context, userID string) (entity.Prediction, error)
}

type backtester interface {
	Point(ctx context.Context, date time.Time, cost float64) (entity.PointResult, error)
	Range(ctx context.Context, start, end time.Time, window int, cost float64) (entity.BacktestReport, error)
	Ledger(ctx context.Context, p usecase.LedgerParams) (entity.BacktestReport, error)
}

type reconciler interface {
	Reconcile(ctx context.Context, p usecase.ReconcileParams) (usecase.ReconcileResult, error)
	Repair(ctx context.Context, userID string, limit int) (usecase.RepairResult, error)
}

// services はサブコマンドが使う依存関係です。
type services struct {
	predict    predictor
	backtest   backtester
	reconcile  reconciler
	invalidate func(ctx context.Context) error
}

// buildFunc はサブコマンド実行時に依存関係を組み立てます。返す関数で後始末します。
type buildFunc func(ctx context.Context) (*services, func(), error)

func buildServices(ctx context.Context) (*services, func(), error) {
	c, err := di.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	return &services{
		predict:    c.Predict,
		backtest:   c.Backtest,
		reconcile:  c.Reconcile,
		invalidate: c.InvalidateMarketCache,
	}, c.Close, nil
}

func newRootCmd(build buildFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "signalctl",
		Short:         "Operate the FTSE 100 signal service from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Duration("timeout", 5*time.Minute, "Overall deadline for the command (0 disables)")

	root.AddCommand(
		newPredictCmd(build),
		newBacktestCmd(build),
		newReconcileCmd(build),
		newRepairCmd(build),
		newTokenCmd(),
	)
	return root
}

// withServices は依存関係を組み立ててから fn を実行します。
func withServices(cmd *cobra.Command, build buildFunc, fn func(ctx context.Context, s *services) error) error {
	ctx := cmd.Context()
	if timeout, err := cmd.Flags().GetDuration("timeout"); err == nil && timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	s, closeFn, err := build(ctx)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return fn(ctx, s)
}

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}

	if err := newRootCmd(buildServices).ExecuteContext(context.Background()); err != nil {
		slog.Error("signalctl failed", "error", err)
		os.Exit(1)
	}
}
