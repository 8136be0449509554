package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPresetsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the available proposal presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, false)
			if err != nil {
				return err
			}
			defer a.close()

			catalog := a.service.Presets()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VENDOR\tPRESET\tPHASE1\tPHASE2\tDH\tINTERFACE")
			for _, vendor := range catalog.Vendors() {
				for _, name := range catalog.Names(vendor) {
					preset, err := catalog.Get(vendor, name)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						vendor, name,
						orDash(preset.Phase1Proposal), orDash(preset.Phase2Proposal),
						orDash(preset.DHGroup), orDash(preset.Interface))
				}
			}
			return w.Flush()
		},
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
