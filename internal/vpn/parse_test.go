package vpn

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func baseFields() map[string]string {
	return map[string]string{
		"tunnel_name":     "test-tunnel",
		"interface":       "wan1",
		"remote_gw":       "203.0.113.1",
		"psk":             "secretPSK",
		"phase1_proposal": "aes256-sha256",
		"phase2_proposal": "aes256-sha256",
		"dhgrp":           "14",
		"local_subnet":    "192.0.2.0/24",
		"remote_subnet":   "198.51.100.0/24",
	}
}

func withFields(overrides map[string]string) map[string]string {
	fields := baseFields()
	for key, value := range overrides {
		fields[key] = value
	}
	return fields
}

func mustValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected validation error, got nil")
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return verr
}

func TestParseValidFortiGateAppliesDefaults(t *testing.T) {
	req, err := Parse(baseFields(), false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if req.Vendor != VendorFortiGate || req.Mode != VendorFortiGate {
		t.Fatalf("expected fortigate vendor and mode, got %q/%q", req.Vendor, req.Mode)
	}
	if req.LocalEndpoint != DefaultLocalEndpoint || req.LocalPort != DefaultLocalPort {
		t.Fatalf("expected defaults, got endpoint=%q port=%q", req.LocalEndpoint, req.LocalPort)
	}
	if req.RemoteGW.String() != "203.0.113.1" {
		t.Fatalf("unexpected remote gw %s", req.RemoteGW)
	}
	if req.LocalSubnet.String() != "192.0.2.0/24" || req.RemoteSubnet.String() != "198.51.100.0/24" {
		t.Fatalf("unexpected subnets %s %s", req.LocalSubnet, req.RemoteSubnet)
	}
	if req.HasTunnelIPs() {
		t.Fatalf("expected no tunnel IPs")
	}
}

func TestParseTrimsValues(t *testing.T) {
	req, err := Parse(withFields(map[string]string{"remote_gw": " 203.0.113.9 ", "vendor": " Cisco ", "tunnel_local_ip": "169.254.1.1/30", "tunnel_remote_ip": "169.254.1.2"}), false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if req.RemoteGW.String() != "203.0.113.9" {
		t.Fatalf("expected trimmed gateway, got %s", req.RemoteGW)
	}
	if req.Vendor != VendorCisco {
		t.Fatalf("expected lowercased vendor, got %q", req.Vendor)
	}
}

func TestParseAcceptsIPv6Gateway(t *testing.T) {
	req, err := Parse(withFields(map[string]string{"remote_gw": "2001:db8::1"}), false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !req.RemoteGW.Is6() {
		t.Fatalf("expected IPv6 gateway, got %s", req.RemoteGW)
	}
}

func TestParseCollectsEveryMissingField(t *testing.T) {
	_, err := Parse(map[string]string{}, false)
	verr := mustValidationError(t, err)
	for _, field := range requiredFields {
		if !verr.Has(field) {
			t.Fatalf("expected %s to be reported, got %v", field, verr.Fields())
		}
	}
	for _, fe := range verr.Errors {
		if fe.Rule != RuleRequired {
			t.Fatalf("expected only required violations, got %+v", fe)
		}
	}
}

func TestParseRejectsOutOfSetEnums(t *testing.T) {
	cases := []struct {
		field string
		value string
	}{
		{field: FieldPhase1Proposal, value: "des-md5"},
		{field: FieldPhase2Proposal, value: "3des-sha1"},
		{field: FieldDHGroup, value: "2"},
	}
	for _, tc := range cases {
		_, err := Parse(withFields(map[string]string{tc.field: tc.value}), false)
		verr := mustValidationError(t, err)
		if len(verr.Errors) != 1 || verr.Errors[0].Field != tc.field || verr.Errors[0].Rule != RuleEnum {
			t.Fatalf("expected single enum violation on %s, got %+v", tc.field, verr.Errors)
		}
	}
}

func TestParseReportsAllCoercionAndEnumErrorsTogether(t *testing.T) {
	_, err := Parse(withFields(map[string]string{
		"remote_gw":       "not-an-ip",
		"local_subnet":    "192.0.2.1/24",
		"remote_subnet":   "garbage",
		"phase1_proposal": "des-md5",
	}), false)
	verr := mustValidationError(t, err)
	got := map[string]bool{}
	for _, fe := range verr.Errors {
		got[fe.Field] = true
	}
	want := map[string]bool{
		FieldRemoteGW:       true,
		FieldLocalSubnet:    true,
		FieldRemoteSubnet:   true,
		FieldPhase1Proposal: true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected fields %v, got %v", want, got)
	}
}

func TestParseVendorsRequiringTunnelIPs(t *testing.T) {
	for _, vendor := range []string{VendorPaloAlto, VendorCisco} {
		_, err := Parse(withFields(map[string]string{"vendor": vendor}), false)
		verr := mustValidationError(t, err)
		if !verr.Has(FieldTunnelLocalIP) || !verr.Has(FieldTunnelRemoteIP) {
			t.Fatalf("%s: expected both tunnel fields reported, got %v", vendor, verr.Fields())
		}
		for _, fe := range verr.Errors {
			if fe.Rule != RuleVendorRequirement {
				t.Fatalf("%s: unexpected rule %+v", vendor, fe)
			}
		}

		_, err = Parse(withFields(map[string]string{"vendor": vendor, "tunnel_local_ip": "169.254.10.1/30"}), false)
		verr = mustValidationError(t, err)
		if verr.Has(FieldTunnelLocalIP) || !verr.Has(FieldTunnelRemoteIP) {
			t.Fatalf("%s: expected only tunnel_remote_ip reported, got %v", vendor, verr.Fields())
		}

		req, err := Parse(withFields(map[string]string{
			"vendor":           vendor,
			"tunnel_local_ip":  "169.254.10.1/30",
			"tunnel_remote_ip": "169.254.10.2",
		}), false)
		if err != nil {
			t.Fatalf("%s: expected success with tunnel IPs, got %v", vendor, err)
		}
		if !req.HasTunnelIPs() {
			t.Fatalf("%s: expected tunnel IPs on request", vendor)
		}
	}
}

func TestParseTunnelRuleWaitsForFieldErrors(t *testing.T) {
	_, err := Parse(withFields(map[string]string{"vendor": VendorPaloAlto, "dhgrp": "5"}), false)
	verr := mustValidationError(t, err)
	if verr.Has(FieldTunnelLocalIP) || verr.Has(FieldTunnelRemoteIP) {
		t.Fatalf("expected vendor rule to be skipped while fields are invalid, got %v", verr.Fields())
	}
	if !verr.Has(FieldDHGroup) {
		t.Fatalf("expected dhgrp violation, got %v", verr.Fields())
	}
}

func TestParseMalformedTunnelIPsRejectedForAnyVendor(t *testing.T) {
	_, err := Parse(withFields(map[string]string{"tunnel_local_ip": "nope", "tunnel_remote_ip": "10.0.0.1/30"}), false)
	verr := mustValidationError(t, err)
	if !verr.Has(FieldTunnelLocalIP) || !verr.Has(FieldTunnelRemoteIP) {
		t.Fatalf("expected malformed tunnel IPs reported, got %v", verr.Fields())
	}
}

func TestParseVendorModeResolution(t *testing.T) {
	cases := []struct {
		name       string
		overrides  map[string]string
		legacyFlag bool
		want       string
	}{
		{name: "default", overrides: nil, want: VendorFortiGate},
		{name: "mode only", overrides: map[string]string{"mode": "fortimanager"}, want: VendorFortiManager},
		{name: "vendor wins over mode", overrides: map[string]string{"mode": "fortimanager", "vendor": "fortigate"}, want: VendorFortiGate},
		{name: "legacy flag overrides vendor", overrides: map[string]string{"vendor": "fortigate"}, legacyFlag: true, want: VendorFortiManager},
		{name: "unknown vendor kept", overrides: map[string]string{"vendor": "juniper"}, want: "juniper"},
	}
	for _, tc := range cases {
		req, err := Parse(withFields(tc.overrides), tc.legacyFlag)
		if err != nil {
			t.Fatalf("%s: Parse failed: %v", tc.name, err)
		}
		if req.Vendor != tc.want || req.Mode != tc.want {
			t.Fatalf("%s: expected vendor/mode %q, got %q/%q", tc.name, tc.want, req.Vendor, req.Mode)
		}
	}
}

func TestParseRejectsUnsafeVendor(t *testing.T) {
	_, err := Parse(withFields(map[string]string{"vendor": "../../etc"}), false)
	verr := mustValidationError(t, err)
	if !verr.Has(FieldVendor) {
		t.Fatalf("expected vendor violation, got %v", verr.Fields())
	}
}

func TestValidationErrorNeverEchoesPSK(t *testing.T) {
	_, err := Parse(withFields(map[string]string{"remote_gw": "bogus", "psk": "supersecret"}), false)
	verr := mustValidationError(t, err)
	if strings.Contains(verr.Error(), "supersecret") {
		t.Fatalf("validation error leaked psk: %q", verr.Error())
	}
	for field, message := range verr.Fields() {
		if strings.Contains(message, "supersecret") {
			t.Fatalf("field %s leaked psk: %q", field, message)
		}
	}
}

func TestParseDoesNotMutateInput(t *testing.T) {
	fields := withFields(map[string]string{"vendor": " PaloAlto "})
	snapshot := map[string]string{}
	for k, v := range fields {
		snapshot[k] = v
	}
	_, _ = Parse(fields, true)
	if !reflect.DeepEqual(fields, snapshot) {
		t.Fatalf("Parse mutated its input")
	}
}

func TestResolveVendorMatchesParse(t *testing.T) {
	fields := withFields(map[string]string{"mode": " FortiManager "})
	req, err := Parse(fields, false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := ResolveVendor(fields, false); got != req.Vendor {
		t.Fatalf("expected %q, got %q", req.Vendor, got)
	}
	if got := ResolveVendor(map[string]string{}, true); got != VendorFortiManager {
		t.Fatalf("expected legacy flag to force fortimanager, got %q", got)
	}
}

func TestParseRejectsCLIBreakout(t *testing.T) {
	cases := []struct {
		name  string
		field string
		value string
	}{
		{"interface closes quote and opens admin block", FieldInterface, "wan1\"\nend\nconfig system admin\n    edit \"backdoor"},
		{"local_port closes block and appends command", FieldLocalPort, "ALL\"\n    next\nend\nexecute factoryreset #"},
		{"interface with space", FieldInterface, "wan1 shutdown"},
		{"interface with single quote", FieldInterface, "wan1'"},
		{"local_endpoint with quote", FieldLocalEndpoint, `10.0.0.1"`},
		{"local_endpoint with space", FieldLocalEndpoint, "10.0.0.1 any"},
		{"local_port with quote", FieldLocalPort, `HTTP"`},
		{"local_port with carriage return", FieldLocalPort, "ALL\rend"},
		{"environment with newline", FieldEnvironment, "prod\nconfig system admin"},
		{"psk with space", FieldPSK, "secret PSK"},
		{"psk with tab", FieldPSK, "secret\tPSK"},
		{"psk with quote", FieldPSK, `secret"PSK`},
		{"psk with newline", FieldPSK, "secret\nend"},
		{"psk with nul", FieldPSK, "secret\x00PSK"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(withFields(map[string]string{tc.field: tc.value}), false)
			verr := mustValidationError(t, err)
			if !verr.Has(tc.field) {
				t.Fatalf("expected %s violation, got %v", tc.field, verr.Fields())
			}
			for _, fe := range verr.Errors {
				if fe.Field == tc.field && fe.Rule != RuleFormat {
					t.Fatalf("expected %s rule, got %s", RuleFormat, fe.Rule)
				}
			}
		})
	}
}

func TestParseAcceptsFreeTextWithinLimits(t *testing.T) {
	req, err := Parse(withFields(map[string]string{
		"interface":      "ethernet1/1",
		"psk":            "S3cr3t!#$%&*-_=+",
		"local_endpoint": "app.internal.example",
		"local_port":     "HTTPS ALT",
		"environment":    "staging east",
	}), false)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if req.Interface != "ethernet1/1" || req.LocalPort != "HTTPS ALT" || req.Environment != "staging east" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestParseRejectsPSKInsideRedactionMarker(t *testing.T) {
	for _, psk := range []string{"psk", "red", "-", "<redacted-psk>", "acted"} {
		_, err := Parse(withFields(map[string]string{"psk": psk}), false)
		verr := mustValidationError(t, err)
		if !verr.Has(FieldPSK) {
			t.Fatalf("psk %q: expected psk violation, got %v", psk, verr.Fields())
		}
	}
	if _, err := Parse(withFields(map[string]string{"psk": "redacted-psk-2026"}), false); err != nil {
		t.Fatalf("expected psk containing the marker text to be accepted, got %v", err)
	}
}
