package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ipsec-confgen/internal/artifact"
)

func newDecryptCmd(opts *rootOptions) *cobra.Command {
	var vendor, tunnel string
	cmd := &cobra.Command{
		Use:   "decrypt --vendor VENDOR --tunnel NAME",
		Short: "Print the pre-shared key of an artifact saved with --save-encrypted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			psk, err := a.writer.RevealPSK(vendor, tunnel)
			if errors.Is(err, artifact.ErrNotEncrypted) {
				return fmt.Errorf("%s/%s was saved without an encrypted pre-shared key", vendor, tunnel)
			}
			if err != nil {
				return err
			}
			a.logger.WithField("vendor", vendor).WithField("tunnel", tunnel).Info("Revealed stored pre-shared key")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), psk)
			return err
		},
	}
	cmd.Flags().StringVar(&vendor, "vendor", "", "Vendor the artifact was saved for")
	cmd.Flags().StringVar(&tunnel, "tunnel", "", "Tunnel name of the artifact")
	_ = cmd.MarkFlagRequired("vendor")
	_ = cmd.MarkFlagRequired("tunnel")
	return cmd
}
