package templates

import (
	"net/netip"
	"testing"
)

func TestNetmaskAndSubnet(t *testing.T) {
	cases := []struct {
		prefix  string
		netmask string
		subnet  string
	}{
		{prefix: "192.0.2.0/24", netmask: "255.255.255.0", subnet: "192.0.2.0 255.255.255.0"},
		{prefix: "169.254.10.1/30", netmask: "255.255.255.252", subnet: "169.254.10.0 255.255.255.252"},
		{prefix: "10.0.0.7/32", netmask: "255.255.255.255", subnet: "10.0.0.7 255.255.255.255"},
		{prefix: "2001:db8::/64", netmask: "/64", subnet: "2001:db8::/64"},
	}
	for _, tc := range cases {
		prefix := netip.MustParsePrefix(tc.prefix)
		if got := netmask(prefix); got != tc.netmask {
			t.Fatalf("netmask(%s): expected %q, got %q", tc.prefix, tc.netmask, got)
		}
		if got := subnet(prefix); got != tc.subnet {
			t.Fatalf("subnet(%s): expected %q, got %q", tc.prefix, tc.subnet, got)
		}
	}
}

func TestVendorCryptoNames(t *testing.T) {
	cases := []struct {
		proposal  string
		pan       string
		panHash   string
		cisco     string
		transform string
	}{
		{proposal: "aes256-sha256", pan: "aes-256-cbc", panHash: "sha256", cisco: "aes-cbc-256", transform: "esp-aes 256 esp-sha256-hmac"},
		{proposal: "aes256-sha384", pan: "aes-256-cbc", panHash: "sha384", cisco: "aes-cbc-256", transform: "esp-aes 256 esp-sha384-hmac"},
		{proposal: "aes128-sha256", pan: "aes-128-cbc", panHash: "sha256", cisco: "aes-cbc-128", transform: "esp-aes 128 esp-sha256-hmac"},
		{proposal: "aes256gcm", pan: "aes-256-gcm", panHash: "none", cisco: "aes-gcm-256", transform: "esp-gcm 256"},
	}
	for _, tc := range cases {
		if got, _ := panCipher(tc.proposal); got != tc.pan {
			t.Fatalf("panCipher(%s) = %q, want %q", tc.proposal, got, tc.pan)
		}
		if got, _ := panHash(tc.proposal); got != tc.panHash {
			t.Fatalf("panHash(%s) = %q, want %q", tc.proposal, got, tc.panHash)
		}
		if got, _ := ciscoCipher(tc.proposal); got != tc.cisco {
			t.Fatalf("ciscoCipher(%s) = %q, want %q", tc.proposal, got, tc.cisco)
		}
		if got, _ := ciscoTransform(tc.proposal); got != tc.transform {
			t.Fatalf("ciscoTransform(%s) = %q, want %q", tc.proposal, got, tc.transform)
		}
	}
	if _, err := ciscoIntegrity("aes256gcm"); err == nil {
		t.Fatalf("expected AEAD proposal to have no integrity algorithm")
	}
	if _, err := panCipher("des-md5"); err == nil {
		t.Fatalf("expected unknown proposal to fail")
	}
}

func TestIdentAndEndpoint(t *testing.T) {
	if got := ident(" HQ to Branch "); got != "HQ_to_Branch" {
		t.Fatalf("unexpected ident %q", got)
	}
	if ep := newEndpoint("10.10.10.50"); ep.IsFQDN || ep.Is6 || ep.Value != "10.10.10.50" {
		t.Fatalf("unexpected endpoint %+v", ep)
	}
	if ep := newEndpoint("2001:db8::5"); !ep.Is6 {
		t.Fatalf("expected IPv6 endpoint, got %+v", ep)
	}
	if ep := newEndpoint("app.example"); !ep.IsFQDN {
		t.Fatalf("expected FQDN endpoint, got %+v", ep)
	}
}
