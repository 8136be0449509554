// Package check inspects rendered configuration text for the blocks each
// vendor needs. Findings are warnings; nothing here fails a request.
package check

import (
	"regexp"
	"strings"

	"ipsec-confgen/internal/vpn"
)

type rule struct {
	warning string
	match   func(lower string) bool
}

func contains(marker string) func(string) bool {
	marker = strings.ToLower(marker)
	return func(lower string) bool {
		return strings.Contains(lower, marker)
	}
}

func anyOf(markers ...string) func(string) bool {
	return func(lower string) bool {
		for _, marker := range markers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
		return false
	}
}

var panTunnelIP = regexp.MustCompile(`(?m)^set network interface tunnel units \S+ ip \S+`)

var fortiOSRules = []rule{
	{warning: "Missing phase1-interface block", match: contains("config vpn ipsec phase1-interface")},
	{warning: "Missing phase2-interface block", match: contains("config vpn ipsec phase2-interface")},
	{warning: "Missing firewall policy block", match: contains("config firewall policy")},
}

var rules = map[string][]rule{
	vpn.VendorFortiGate:    fortiOSRules,
	vpn.VendorFortiManager: fortiOSRules,
	vpn.VendorPaloAlto: {
		{warning: "Missing IKE gateway configuration", match: contains("set network ike gateway")},
		{warning: "Missing IPsec tunnel configuration", match: contains("set network tunnel ipsec")},
		{warning: "Missing tunnel interface IP assignment", match: panTunnelIP.MatchString},
	},
	vpn.VendorCisco: {
		{warning: "Missing IKEv2 proposal", match: contains("crypto ikev2 proposal")},
		{warning: "Missing IPsec transform-set", match: contains("crypto ipsec transform-set")},
		{warning: "Missing tunnel interface", match: contains("interface tunnel")},
	},
}

var genericRules = []rule{
	{warning: "No phase1 or IKE configuration found", match: anyOf("phase1", "ike")},
}

// Structure returns the structural warnings for configText rendered for
// vendor, in a fixed order per vendor. The scan is case-insensitive.
func Structure(configText, vendor string) []string {
	lower := strings.ToLower(configText)
	vendorRules, ok := rules[strings.ToLower(strings.TrimSpace(vendor))]
	if !ok {
		vendorRules = genericRules
	}
	warnings := []string{}
	for _, r := range vendorRules {
		if !r.match(lower) {
			warnings = append(warnings, r.warning)
		}
	}
	return warnings
}
