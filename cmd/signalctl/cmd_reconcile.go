package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ftse_backend/internal/feature/signal/usecase"
)

func newReconcileCmd(build buildFunc) *cobra.Command {
	var (
		p          usecase.ReconcileParams
		flushCache bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Attach realized closes to stored predictions",
		Long: `Fill actual_close, abs_error, pct_error and direction_hit for stored
predictions whose target date has closed. Records without a close within
four days of prediction_for are skipped.

Examples:
  signalctl reconcile
  signalctl reconcile --force --days-back 365 --flush-cache`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, build, func(ctx context.Context, s *services) error {
				if flushCache && s.invalidate != nil {
					if err := s.invalidate(ctx); err != nil {
						return fmt.Errorf("flush market cache: %w", err)
					}
				}
				res, err := s.reconcile.Reconcile(ctx, p)
				if err != nil {
					return fmt.Errorf("reconcile: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated=%d skipped=%d", res.Updated, res.Skipped)
				if res.Reason != "" {
					fmt.Fprintf(cmd.OutOrStdout(), " reason=%q", res.Reason)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&p.Force, "force", false, "Recompute records that already have an actual close")
	cmd.Flags().IntVar(&p.DaysBack, "days-back", usecase.DefaultDaysBack, "Calendar days of history to fetch")
	cmd.Flags().IntVar(&p.Limit, "limit", usecase.DefaultBatchLimit, "Maximum records to process")
	cmd.Flags().StringVar(&p.UserID, "user", "", "Only reconcile records owned by this user")
	cmd.Flags().BoolVar(&flushCache, "flush-cache", false, "Drop cached market data before fetching")
	return cmd
}

func newRepairCmd(build buildFunc) *cobra.Command {
	var (
		userID string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Move prediction_for off the window end date",
		Long: `Rewrite records whose prediction_for equals window_end to the next trading
day and clear their reconciliation fields so the next reconcile recomputes them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, build, func(ctx context.Context, s *services) error {
				res, err := s.reconcile.Repair(ctx, userID, limit)
				if err != nil {
					return fmt.Errorf("repair: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "fixed=%d skipped=%d\n", res.Fixed, res.Skipped)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", usecase.DefaultBatchLimit, "Maximum records to inspect")
	cmd.Flags().StringVar(&userID, "user", "", "Only repair records owned by this user")
	return cmd
}
