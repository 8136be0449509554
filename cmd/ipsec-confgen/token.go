package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ipsec-confgen/internal/auth"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Generate an API bearer token and the hash to put in the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, hash, err := auth.GenerateToken()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "token: %s\n\n", token)
			fmt.Fprintln(out, "Add to the configuration file:")
			fmt.Fprintf(out, "auth:\n  token_hash: %q\n", hash)
			return nil
		},
	}
}
