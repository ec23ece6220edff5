package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/websitekoning/koning-api/libs/auth"
	"github.com/websitekoning/koning-api/libs/config"
)

func newHashPasswordCmd() *cobra.Command {
	var password string

	c := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		RunE: func(cmd *cobra.Command, _ []string) error {
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	c.Flags().StringVar(&password, "password", "", "password to hash")
	_ = c.MarkFlagRequired("password")
	return c
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	c := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token signed with ADMIN_TOKEN_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := config.String("ADMIN_TOKEN_SECRET", "")
			if secret == "" {
				return errors.New("ADMIN_TOKEN_SECRET is required")
			}
			token, err := auth.SignHS256(auth.NewClaims(subject, "admin", ttl), secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	c.Flags().StringVar(&subject, "subject", "admin", "token subject")
	c.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return c
}
