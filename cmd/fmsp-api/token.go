package main

import (
	"fmt"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/auth"

	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		subject   string
		household string
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed household token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			token, err := auth.NewJWTConfig(cfg.JWTSecret).Issue(subject, household, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject (user id)")
	cmd.Flags().StringVar(&household, "household", "", "Household the token grants access to")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime")
	cmd.MarkFlagRequired("household")
	return cmd
}
