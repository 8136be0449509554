package vpn

import "strings"

// Parse validates an untyped field map and returns the normalized request.
//
// Checks run in a fixed order: required fields, type coercion, enum
// membership, then the vendor-specific tunnel address rule. Every violation
// of the first three phases is collected; the vendor rule only runs once all
// individual fields are valid. A failure is always a *ValidationError.
//
// fortiManagerMode is the legacy checkbox; when set it forces the vendor to
// fortimanager regardless of the vendor and mode fields.
func Parse(fields map[string]string, fortiManagerMode bool) (*Request, error) {
	values := make(map[string]string, len(fields))
	for key, value := range fields {
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	vendor := resolveVendor(values, fortiManagerMode)

	verr := &ValidationError{}
	for _, name := range requiredFields {
		if values[name] == "" {
			verr.add(name, RuleRequired, name+" is required")
		}
	}

	req := &Request{
		TunnelName:     values[FieldTunnelName],
		Interface:      values[FieldInterface],
		PSK:            values[FieldPSK],
		Phase1Proposal: values[FieldPhase1Proposal],
		Phase2Proposal: values[FieldPhase2Proposal],
		DHGroup:        values[FieldDHGroup],
		LocalEndpoint:  valueOr(values[FieldLocalEndpoint], DefaultLocalEndpoint),
		LocalPort:      valueOr(values[FieldLocalPort], DefaultLocalPort),
		Mode:           vendor,
		Vendor:         vendor,
		Environment:    values[FieldEnvironment],
	}

	// Type coercion.
	if req.TunnelName != "" {
		if err := ValidateTunnelName(req.TunnelName); err != nil {
			verr.add(FieldTunnelName, RuleFormat, err.Error())
		}
	}
	if err := ValidateVendor(vendor); err != nil {
		verr.add(FieldVendor, RuleFormat, err.Error())
	}
	if req.PSK != "" {
		if err := validatePSK(req.PSK); err != nil {
			verr.add(FieldPSK, RuleFormat, err.Error())
		}
	}
	for _, text := range []struct {
		field      string
		value      string
		allowSpace bool
	}{
		{FieldInterface, req.Interface, false},
		{FieldLocalEndpoint, req.LocalEndpoint, false},
		{FieldLocalPort, req.LocalPort, true},
		{FieldEnvironment, req.Environment, true},
	} {
		if err := validateText(text.field, text.value, text.allowSpace); err != nil {
			verr.add(text.field, RuleFormat, err.Error())
		}
	}
	if raw := values[FieldRemoteGW]; raw != "" {
		addr, err := parseHostAddr(raw)
		if err != nil {
			verr.add(FieldRemoteGW, RuleFormat, "remote_gw "+err.Error())
		} else {
			req.RemoteGW = addr
		}
	}
	if raw := values[FieldLocalSubnet]; raw != "" {
		prefix, err := parseNetwork(raw)
		if err != nil {
			verr.add(FieldLocalSubnet, RuleFormat, "local_subnet "+err.Error())
		} else {
			req.LocalSubnet = prefix
		}
	}
	if raw := values[FieldRemoteSubnet]; raw != "" {
		prefix, err := parseNetwork(raw)
		if err != nil {
			verr.add(FieldRemoteSubnet, RuleFormat, "remote_subnet "+err.Error())
		} else {
			req.RemoteSubnet = prefix
		}
	}
	if raw := values[FieldTunnelLocalIP]; raw != "" {
		prefix, err := parseInterfaceCIDR(raw)
		if err != nil {
			verr.add(FieldTunnelLocalIP, RuleFormat, "tunnel_local_ip "+err.Error())
		} else {
			req.TunnelLocalIP = prefix
		}
	}
	if raw := values[FieldTunnelRemoteIP]; raw != "" {
		addr, err := parseHostAddr(raw)
		if err != nil {
			verr.add(FieldTunnelRemoteIP, RuleFormat, "tunnel_remote_ip "+err.Error())
		} else {
			req.TunnelRemoteIP = addr
		}
	}

	// Enum membership.
	if req.Phase1Proposal != "" && !inSet(req.Phase1Proposal, Phase1Proposals) {
		verr.add(FieldPhase1Proposal, RuleEnum, enumMessage(FieldPhase1Proposal, Phase1Proposals))
	}
	if req.Phase2Proposal != "" && !inSet(req.Phase2Proposal, Phase2Proposals) {
		verr.add(FieldPhase2Proposal, RuleEnum, enumMessage(FieldPhase2Proposal, Phase2Proposals))
	}
	if req.DHGroup != "" && !inSet(req.DHGroup, DHGroups) {
		verr.add(FieldDHGroup, RuleEnum, enumMessage(FieldDHGroup, DHGroups))
	}

	if !verr.empty() {
		return nil, verr
	}

	if RequiresTunnelIPs(vendor) {
		if !req.TunnelLocalIP.IsValid() {
			verr.add(FieldTunnelLocalIP, RuleVendorRequirement, "tunnel_local_ip is required for "+vendor)
		}
		if !req.TunnelRemoteIP.IsValid() {
			verr.add(FieldTunnelRemoteIP, RuleVendorRequirement, "tunnel_remote_ip is required for "+vendor)
		}
		if !verr.empty() {
			return nil, verr
		}
	}
	return req, nil
}

// ResolveVendor returns the vendor Parse would select for fields without
// validating anything else.
func ResolveVendor(fields map[string]string, fortiManagerMode bool) string {
	return resolveVendor(map[string]string{
		FieldVendor: strings.TrimSpace(fields[FieldVendor]),
		FieldMode:   strings.TrimSpace(fields[FieldMode]),
	}, fortiManagerMode)
}

func resolveVendor(values map[string]string, fortiManagerMode bool) string {
	if fortiManagerMode {
		return VendorFortiManager
	}
	vendor := strings.ToLower(values[FieldVendor])
	if vendor == "" {
		vendor = strings.ToLower(values[FieldMode])
	}
	if vendor == "" {
		vendor = DefaultVendor
	}
	return vendor
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
