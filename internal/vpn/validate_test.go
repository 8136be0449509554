package vpn

import (
	"strings"
	"testing"
)

func TestValidateTunnelName(t *testing.T) {
	valid := []string{
		"test-tunnel",
		"a",
		"HQ to Branch 01",
		"WG_01.test",
		strings.Repeat("a", 64),
	}
	for _, name := range valid {
		if err := ValidateTunnelName(name); err != nil {
			t.Fatalf("expected valid name %q, got error: %v", name, err)
		}
	}

	invalid := []string{
		"",
		"   ",
		"bad/name",
		`bad\name`,
		"../bad",
		"bad..name",
		`say "hi"`,
		"tab\there",
		strings.Repeat("a", 65),
	}
	for _, name := range invalid {
		if err := ValidateTunnelName(name); err == nil {
			t.Fatalf("expected invalid name %q to fail validation", name)
		}
	}
}

func TestValidateVendor(t *testing.T) {
	for _, vendor := range []string{"fortigate", "cisco", "juniper-srx", "strongswan_5"} {
		if err := ValidateVendor(vendor); err != nil {
			t.Fatalf("expected valid vendor %q, got error: %v", vendor, err)
		}
	}
	for _, vendor := range []string{"", "Cisco", "-bad", "has space", "../etc"} {
		if err := ValidateVendor(vendor); err == nil {
			t.Fatalf("expected invalid vendor %q to fail validation", vendor)
		}
	}
}

func TestFlagValue(t *testing.T) {
	for _, raw := range []string{"1", "true", "on", "yes", "checked"} {
		if !FlagValue(raw) {
			t.Fatalf("expected %q to be truthy", raw)
		}
	}
	for _, raw := range []string{"", "0", "false", "OFF", " no "} {
		if FlagValue(raw) {
			t.Fatalf("expected %q to be falsy", raw)
		}
	}
}

func TestParseNetworkRejectsHostBits(t *testing.T) {
	if _, err := parseNetwork("192.0.2.1/24"); err == nil {
		t.Fatalf("expected host bits to be rejected")
	} else if !strings.Contains(err.Error(), "192.0.2.0/24") {
		t.Fatalf("expected masked suggestion in error, got %v", err)
	}
	prefix, err := parseNetwork("10.0.0.7")
	if err != nil {
		t.Fatalf("expected bare address to parse, got %v", err)
	}
	if prefix.String() != "10.0.0.7/32" {
		t.Fatalf("expected host prefix, got %s", prefix)
	}
	if _, err := parseNetwork("2001:db8::/64"); err != nil {
		t.Fatalf("expected IPv6 network to parse, got %v", err)
	}
}

func TestParseInterfaceCIDRAllowsHostBits(t *testing.T) {
	prefix, err := parseInterfaceCIDR("169.254.10.1/30")
	if err != nil {
		t.Fatalf("expected interface CIDR to parse, got %v", err)
	}
	if prefix.Addr().String() != "169.254.10.1" || prefix.Bits() != 30 {
		t.Fatalf("unexpected prefix %s", prefix)
	}
	if _, err := parseInterfaceCIDR("169.254.10.1/33"); err == nil {
		t.Fatalf("expected out of range prefix length to fail")
	}
}
