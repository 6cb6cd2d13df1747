package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/oficina/internal/auth"
	"github.com/erazemk/oficina/internal/db"
	"github.com/erazemk/oficina/internal/store"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		clientName string
		readOnly   bool
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := db.Open(a.cfg.DB.Path)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.Migrate(database); err != nil {
				return err
			}

			secret, err := store.GetTokenSecret(cmd.Context(), database)
			if err != nil {
				return err
			}

			token, err := auth.GenerateToken(secret, clientName, readOnly, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&clientName, "client", "console", "name recorded in the token")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "issue a token that cannot modify stock")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTTL, "token lifetime")
	return cmd
}
