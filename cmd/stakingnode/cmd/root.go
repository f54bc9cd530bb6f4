package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/thrylos-labs/stakeledger/config"
	"github.com/thrylos-labs/stakeledger/staking"
)

type rootOptions struct {
	configPath string
	envPath    string
	cfg        *config.Config
}

func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the stakingnode command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "stakingnode",
		Short:         "Time based staking ledger node",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.envPath, opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a JSON config file")
	root.PersistentFlags().StringVar(&opts.envPath, "env", "", "path to a .env file with STAKING_* overrides")

	root.AddCommand(
		newServeCmd(opts),
		newTokenCmd(opts),
		newRewardCmd(opts),
		newKeygenCmd(),
	)
	return root
}

func rewardRate(cfg *config.Config) (staking.RewardRate, error) {
	return staking.NewRewardRate(
		cfg.RateNumerator,
		cfg.RateDenominator,
		time.Duration(cfg.RewardPeriodSeconds)*time.Second,
	)
}
