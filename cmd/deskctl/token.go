package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/backoffice/internal/http/auth"
)

func tokenCmd() *cobra.Command {
	var (
		subject string
		tenant  string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API token with the local JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.cfg.Auth.Secret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}

			if ttl == 0 {
				ttl = app.cfg.Auth.TokenTTL
			}

			token, err := auth.NewVerifier(app.cfg.Auth.Secret).Issue(subject, tenantID, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "deskctl", "token subject")
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant UUID")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "lifetime (default $JWT_TTL)")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show who the configured token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := app.api.Me(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "subject: %s\ntenant:  %s\n", id.Subject, id.TenantID)

			return nil
		},
	}
}
