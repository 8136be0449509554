package vpn

import (
	"fmt"
	"net/netip"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"ipsec-confgen/internal/secret"
)

var vendorPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)

// ValidateTunnelName checks that a tunnel name is usable as a storage key
// component. Spaces are allowed; they become underscores on disk.
func ValidateTunnelName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("tunnel name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("tunnel name must be 64 characters or fewer")
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("tunnel name must not contain '..'")
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("tunnel name must not contain path separators")
	}
	if strings.ContainsAny(name, `"'`) {
		return fmt.Errorf("tunnel name must not contain quotes")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("tunnel name must not contain control characters")
		}
	}
	return nil
}

// validateText checks a free-text value that is rendered verbatim into a
// vendor CLI line. Control characters (including CR and LF) and quotes are
// always rejected; whitespace only when allowSpace is false.
func validateText(field, value string, allowSpace bool) error {
	for _, r := range value {
		switch {
		case unicode.IsControl(r):
			return fmt.Errorf("%s must not contain control characters", field)
		case !allowSpace && unicode.IsSpace(r):
			return fmt.Errorf("%s must not contain whitespace", field)
		case r == '"' || r == '\'':
			return fmt.Errorf("%s must not contain quotes", field)
		}
	}
	return nil
}

// validatePSK rejects keys that cannot be written as a single unquoted CLI
// token, and keys that redaction could not reliably remove from output.
func validatePSK(psk string) error {
	if err := validateText(FieldPSK, psk, false); err != nil {
		return err
	}
	if strings.Contains(secret.RedactedPlaceholder, psk) {
		return fmt.Errorf("psk must not be part of the redaction marker %q", secret.RedactedPlaceholder)
	}
	return nil
}

// ValidateVendor checks that a vendor identifier is a lowercase token.
func ValidateVendor(vendor string) error {
	if !vendorPattern.MatchString(vendor) {
		return fmt.Errorf("vendor must match ^[a-z0-9][a-z0-9_-]{0,31}$")
	}
	return nil
}

// FlagValue interprets a form checkbox or flag value.
func FlagValue(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}

func parseHostAddr(raw string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%q is not a valid IP address", raw)
	}
	if addr.Zone() != "" {
		return netip.Addr{}, fmt.Errorf("%q must not carry a zone", raw)
	}
	return addr.Unmap(), nil
}

// parseNetwork accepts a network prefix without host bits. A bare address is
// read as a single-host network.
func parseNetwork(raw string) (netip.Prefix, error) {
	if !strings.Contains(raw, "/") {
		addr, err := parseHostAddr(raw)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("%q is not a valid network", raw)
		}
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}
	prefix, err := netip.ParsePrefix(raw)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%q is not a valid network", raw)
	}
	if prefix.Masked() != prefix {
		return netip.Prefix{}, fmt.Errorf("%q has host bits set (did you mean %s?)", raw, prefix.Masked())
	}
	return prefix, nil
}

// parseInterfaceCIDR accepts an interface address with its prefix length,
// e.g. 169.254.10.1/30. A bare address is read as a host prefix.
func parseInterfaceCIDR(raw string) (netip.Prefix, error) {
	if !strings.Contains(raw, "/") {
		addr, err := parseHostAddr(raw)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("%q is not a valid CIDR", raw)
		}
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}
	prefix, err := netip.ParsePrefix(raw)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%q is not a valid CIDR", raw)
	}
	return prefix, nil
}

func enumMessage(field string, allowed []string) string {
	return fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", "))
}

func inSet(value string, allowed []string) bool {
	return slices.Contains(allowed, value)
}
