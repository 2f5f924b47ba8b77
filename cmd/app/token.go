package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/tareas-api/internal/auth"
	"github.com/BuzzLyutic/tareas-api/internal/config"
	"github.com/BuzzLyutic/tareas-api/internal/model"
)

// newTokenCmd выпускает bearer-токен для владельца, подписанный JWT_SECRET
func newTokenCmd() *cobra.Command {
	var (
		owner int64
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.JWT.TokenTTL
			}

			token, err := auth.NewJWT(cfg.JWT.Secret, cfg.JWT.Issuer).Issue(model.OwnerID(owner), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "owner id to embed in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
