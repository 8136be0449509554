package templates

import (
	"fmt"
	"net"
	"net/netip"
	"strings"
	"text/template"

	"go4.org/netipx"
)

// suite describes the cipher and integrity algorithms behind a proposal name.
type suite struct {
	bits int
	mode string
	hash string
}

var suites = map[string]suite{
	"aes256-sha256": {bits: 256, mode: "cbc", hash: "sha256"},
	"aes256-sha384": {bits: 256, mode: "cbc", hash: "sha384"},
	"aes128-sha256": {bits: 128, mode: "cbc", hash: "sha256"},
	"aes256gcm":     {bits: 256, mode: "gcm"},
}

func lookupSuite(proposal string) (suite, error) {
	s, ok := suites[proposal]
	if !ok {
		return suite{}, fmt.Errorf("no cipher suite for proposal %q", proposal)
	}
	return s, nil
}

// endpoint is the address object view of the reverse rule endpoint.
type endpoint struct {
	Value  string
	Is6    bool
	IsFQDN bool
}

var funcs = template.FuncMap{
	"ident":          ident,
	"netmask":        netmask,
	"subnet":         subnet,
	"endpoint":       newEndpoint,
	"panCipher":      panCipher,
	"panHash":        panHash,
	"ciscoCipher":    ciscoCipher,
	"ciscoIntegrity": ciscoIntegrity,
	"ciscoTransform": ciscoTransform,
}

// ident makes a name usable as a vendor object identifier.
func ident(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

func netmask(prefix netip.Prefix) string {
	if prefix.Addr().Is6() {
		return fmt.Sprintf("/%d", prefix.Bits())
	}
	return net.IP(netipx.PrefixIPNet(prefix.Masked()).Mask).String()
}

// subnet renders a prefix as "address mask" for IPv4 and in CIDR form for IPv6.
func subnet(prefix netip.Prefix) string {
	if prefix.Addr().Is6() {
		return prefix.Masked().String()
	}
	return prefix.Masked().Addr().String() + " " + netmask(prefix)
}

func newEndpoint(raw string) endpoint {
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return endpoint{Value: raw, IsFQDN: true}
	}
	addr = addr.Unmap()
	return endpoint{Value: addr.String(), Is6: addr.Is6()}
}

func panCipher(proposal string) (string, error) {
	s, err := lookupSuite(proposal)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("aes-%d-%s", s.bits, s.mode), nil
}

func panHash(proposal string) (string, error) {
	s, err := lookupSuite(proposal)
	if err != nil {
		return "", err
	}
	if s.hash == "" {
		return "none", nil
	}
	return s.hash, nil
}

func ciscoCipher(proposal string) (string, error) {
	s, err := lookupSuite(proposal)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("aes-%s-%d", s.mode, s.bits), nil
}

func ciscoIntegrity(proposal string) (string, error) {
	s, err := lookupSuite(proposal)
	if err != nil {
		return "", err
	}
	if s.hash == "" {
		return "", fmt.Errorf("proposal %q has no integrity algorithm", proposal)
	}
	return s.hash, nil
}

func ciscoTransform(proposal string) (string, error) {
	s, err := lookupSuite(proposal)
	if err != nil {
		return "", err
	}
	if s.mode == "gcm" {
		return fmt.Sprintf("esp-gcm %d", s.bits), nil
	}
	return fmt.Sprintf("esp-aes %d esp-%s-hmac", s.bits, s.hash), nil
}
