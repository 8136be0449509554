package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"ipsec-confgen/internal/generator"
	"ipsec-confgen/internal/vpn"
)

type generateOptions struct {
	sets          []string
	vendor        string
	preset        string
	fortiManager  bool
	includePSK    bool
	save          bool
	saveEncrypted bool
	asJSON        bool
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	gen := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate --set key=value ...",
		Short: "Render a configuration to stdout",
		Example: `  ipsec-confgen generate --vendor cisco \
    --set tunnel_name=branch-a --set interface=GigabitEthernet1 \
    --set remote_gw=203.0.113.1 --set psk=changeme \
    --set phase1_proposal=aes256-sha256 --set phase2_proposal=aes256gcm --set dhgrp=14 \
    --set local_subnet=192.0.2.0/24 --set remote_subnet=198.51.100.0/24 \
    --set tunnel_local_ip=169.254.10.1/30 --set tunnel_remote_ip=169.254.10.2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := gen.input()
			if err != nil {
				return err
			}
			a, err := loadApp(opts, gen.save)
			if err != nil {
				return err
			}
			defer a.close()
			return runGenerate(cmd, a, gen, in)
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVar(&gen.sets, "set", nil, "Request field as key=value (repeatable)")
	flags.StringVar(&gen.vendor, "vendor", "", "Target vendor; shorthand for --set vendor=...")
	flags.StringVar(&gen.preset, "preset", "", "Fill empty proposal fields from a named preset")
	flags.BoolVar(&gen.fortiManager, "fortimanager", false, "Render for FortiManager")
	flags.BoolVar(&gen.includePSK, "include-psk", false, "Print the pre-shared key instead of a placeholder")
	flags.BoolVar(&gen.save, "save", false, "Also save the configuration to the storage directory")
	flags.BoolVar(&gen.saveEncrypted, "save-encrypted", false, "Store the pre-shared key encrypted in the saved metadata (implies --save)")
	flags.BoolVar(&gen.asJSON, "json", false, "Print the full result as JSON")
	return cmd
}

func (g *generateOptions) input() (generator.Input, error) {
	fields, err := parseSets(g.sets)
	if err != nil {
		return generator.Input{}, err
	}
	if g.vendor != "" {
		fields[vpn.FieldVendor] = g.vendor
	}
	if g.saveEncrypted {
		g.save = true
	}
	return generator.Input{
		Fields:           fields,
		FortiManagerMode: g.fortiManager,
		IncludePSK:       g.includePSK,
		SaveEncrypted:    g.saveEncrypted,
		Preset:           g.preset,
	}, nil
}

func parseSets(sets []string) (map[string]string, error) {
	fields := make(map[string]string, len(sets))
	for _, raw := range sets {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected key=value", raw)
		}
		fields[key] = value
	}
	return fields, nil
}

func runGenerate(cmd *cobra.Command, a *app, gen *generateOptions, in generator.Input) error {
	var (
		result *generator.Result
		err    error
		saved  string
	)
	if gen.save {
		result, saved, err = saveResult(cmd, a, in)
	} else {
		result, err = a.service.Generate(in)
	}
	if err != nil {
		return describeError(err)
	}

	out := cmd.OutOrStdout()
	if gen.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	if _, err := io.WriteString(out, result.Config); err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	for _, warning := range result.Warnings {
		fmt.Fprintf(stderr, "warning: %s\n", warning)
	}
	if saved != "" {
		fmt.Fprintf(stderr, "saved %s\n", saved)
	}
	return nil
}

func saveResult(cmd *cobra.Command, a *app, in generator.Input) (*generator.Result, string, error) {
	result, art, err := a.service.Save(cmd.Context(), in)
	if err != nil {
		return nil, "", err
	}
	return result, art.FilePath, nil
}

// describeError expands validation failures into one line per field.
func describeError(err error) error {
	var verr *vpn.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	fields := verr.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  %s: %s", name, fields[name]))
	}
	return fmt.Errorf("invalid request:\n%s", strings.Join(lines, "\n"))
}
