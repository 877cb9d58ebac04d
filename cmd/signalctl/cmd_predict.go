package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newPredictCmd(build buildFunc) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Issue a live prediction for the next trading day",
		Long: `Fetch the latest bars, run the forecaster on the trailing window, derive
the signal and persist the record when a store is configured.

Examples:
  signalctl predict
  signalctl predict --user 8b0c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, build, func(ctx context.Context, s *services) error {
				p, err := s.predict.Predict(ctx, userID)
				if err != nil {
					return fmt.Errorf("predict: %w", err)
				}
				printPrediction(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Owner user id of the saved record")
	return cmd
}
