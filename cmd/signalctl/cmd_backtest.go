package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ftse_backend/internal/feature/signal/usecase"
	"ftse_backend/internal/shared/tradingday"
)

func newBacktestCmd(build buildFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Evaluate predictions against realized closes",
	}

	var (
		date, start, end string
		window           int
		cost             float64
	)
	addEval := func(c *cobra.Command) {
		c.Flags().IntVar(&window, "window", usecase.DefaultRollingWindow, "Rolling window length in rows")
		c.Flags().Float64Var(&cost, "cost", 0, "Per-side cost as a fraction of the previous close")
	}

	point := &cobra.Command{
		Use:   "point",
		Short: "Replay a single date (rolls forward to the next valid trading day)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := tradingday.Parse(date)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			return withServices(cmd, build, func(ctx context.Context, s *services) error {
				res, err := s.backtest.Point(ctx, d, cost)
				if err != nil {
					return fmt.Errorf("point backtest: %w", err)
				}
				printPoint(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	point.Flags().StringVar(&date, "date", "", "Target date (YYYY-MM-DD)")
	point.Flags().Float64Var(&cost, "cost", 0, "Per-side cost as a fraction of the previous close")
	_ = point.MarkFlagRequired("date")

	rangeCmd := &cobra.Command{
		Use:   "range",
		Short: "Replay every trading day in [start, end]",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := tradingday.Parse(start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			to, err := tradingday.Parse(end)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			return withServices(cmd, build, func(ctx context.Context, s *services) error {
				report, err := s.backtest.Range(ctx, from, to, window, cost)
				if err != nil {
					return fmt.Errorf("range backtest: %w", err)
				}
				printReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}
	rangeCmd.Flags().StringVar(&start, "start", "", "First date (YYYY-MM-DD)")
	rangeCmd.Flags().StringVar(&end, "end", "", "Last date (YYYY-MM-DD)")
	addEval(rangeCmd)
	_ = rangeCmd.MarkFlagRequired("start")
	_ = rangeCmd.MarkFlagRequired("end")

	ledger := &cobra.Command{
		Use:   "ledger",
		Short: "Evaluate persisted, reconciled predictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := usecase.LedgerParams{Window: window, Cost: cost}
			var err error
			if p.From, err = optionalDate(start); err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			if p.To, err = optionalDate(end); err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			return withServices(cmd, build, func(ctx context.Context, s *services) error {
				report, err := s.backtest.Ledger(ctx, p)
				if err != nil {
					return fmt.Errorf("ledger backtest: %w", err)
				}
				printReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}
	ledger.Flags().StringVar(&start, "start", "", "First prediction_for date (YYYY-MM-DD)")
	ledger.Flags().StringVar(&end, "end", "", "Last prediction_for date (YYYY-MM-DD)")
	addEval(ledger)

	cmd.AddCommand(point, rangeCmd, ledger)
	return cmd
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := tradingday.Parse(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
