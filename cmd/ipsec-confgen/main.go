package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "ipsec-confgen.yaml"

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "ipsec-confgen",
		Short: "Generate vendor IPsec site-to-site VPN configurations",
		Long: `ipsec-confgen renders IPsec site-to-site VPN configuration for FortiGate,
FortiManager, Palo Alto PAN-OS and Cisco IOS-XE from one set of tunnel
parameters. Pre-shared keys are redacted unless explicitly requested and can
be stored encrypted alongside saved configurations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c",
		defaultConfigPath,
		"Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "l",
		"",
		"Log level (debug, info, warn, error); overrides the configuration file")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newGenerateCmd(opts),
		newDecryptCmd(opts),
		newPresetsCmd(opts),
		newTokenCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
