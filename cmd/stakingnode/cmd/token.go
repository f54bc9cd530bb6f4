package cmd

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/thrylos-labs/stakeledger/config"
	"github.com/thrylos-labs/stakeledger/network"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		principal string
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token for a principal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.JWTSecret == "" {
				return errors.Wrapf(config.ErrInvalidConfig, "%s is not set", config.EnvJWTSecret)
			}
			tok, err := network.IssueToken([]byte(opts.cfg.JWTSecret), principal, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "bech32 address of the caller")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("principal")
	return cmd
}
