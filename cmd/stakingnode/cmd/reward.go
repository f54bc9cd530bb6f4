package cmd

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/thrylos-labs/stakeledger/amount"
)

func newRewardCmd(opts *rootOptions) *cobra.Command {
	var (
		amt     string
		thr     string
		elapsed time.Duration
	)
	cmd := &cobra.Command{
		Use:   "reward",
		Short: "Print the reward a stake would earn under the configured rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			staked, err := stakedAmount(amt, thr)
			if err != nil {
				return err
			}
			rate, err := rewardRate(opts.cfg)
			if err != nil {
				return err
			}
			reward, err := rate.RewardFor(staked, elapsed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", uint64(reward))
			return nil
		},
	}
	cmd.Flags().StringVar(&amt, "amount", "", "staked amount in the smallest unit")
	cmd.Flags().StringVar(&thr, "thr", "", "staked amount in THR, e.g. 12.5")
	cmd.Flags().DurationVar(&elapsed, "elapsed", 24*time.Hour, "how long the stake stays open")
	cmd.MarkFlagsMutuallyExclusive("amount", "thr")
	return cmd
}

func stakedAmount(raw, thr string) (amount.Amount, error) {
	switch {
	case raw != "":
		return amount.Parse(raw)
	case thr != "":
		return amount.FromString(thr)
	default:
		return 0, errors.New("one of --amount or --thr is required")
	}
}
