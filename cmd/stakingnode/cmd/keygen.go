package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	stakecrypto "github.com/thrylos-labs/stakeledger/crypto"
)

// newKeygenCmd derives a principal from a BIP-39 mnemonic, generating one
// when none is given.
func newKeygenCmd() *cobra.Command {
	var mnemonic, passphrase string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Derive an ML-DSA-44 key and its staking address",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mnemonic == "" {
				var err error
				if mnemonic, err = stakecrypto.NewMnemonic(); err != nil {
					return err
				}
			}
			sk, err := stakecrypto.NewPrivateKeyFromMnemonic(mnemonic, passphrase)
			if err != nil {
				return err
			}
			addr, err := sk.PublicKey().Address()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mnemonic:   %s\n", mnemonic)
			fmt.Fprintf(out, "address:    %s\n", addr.String())
			fmt.Fprintf(out, "public key: %s\n", sk.PublicKey().String())
			return nil
		},
	}
	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "existing BIP-39 mnemonic")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "optional BIP-39 passphrase")
	return cmd
}
