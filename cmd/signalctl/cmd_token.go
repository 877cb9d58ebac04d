package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	jwtmw "ftse_backend/internal/platform/jwt"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the protected endpoints (signed with JWT_SECRET)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), ttl).GenerateToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "User id placed in the sub claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
