package vpn

import "net/netip"

// Registered vendors. Any other vendor identifier is accepted and rendered
// through the generic fallback.
const (
	VendorFortiGate    = "fortigate"
	VendorFortiManager = "fortimanager"
	VendorPaloAlto     = "paloalto"
	VendorCisco        = "cisco"
)

// Field names of the untyped input map.
const (
	FieldTunnelName     = "tunnel_name"
	FieldInterface      = "interface"
	FieldRemoteGW       = "remote_gw"
	FieldPSK            = "psk"
	FieldPhase1Proposal = "phase1_proposal"
	FieldPhase2Proposal = "phase2_proposal"
	FieldDHGroup        = "dhgrp"
	FieldLocalSubnet    = "local_subnet"
	FieldRemoteSubnet   = "remote_subnet"
	FieldLocalEndpoint  = "local_endpoint"
	FieldLocalPort      = "local_port"
	FieldMode           = "mode"
	FieldVendor         = "vendor"
	FieldTunnelLocalIP  = "tunnel_local_ip"
	FieldTunnelRemoteIP = "tunnel_remote_ip"
	FieldEnvironment    = "environment"
)

// Defaults applied when optional fields are left empty.
const (
	DefaultLocalEndpoint = "10.10.10.50"
	DefaultLocalPort     = "ALL"
	DefaultVendor        = VendorFortiGate
)

var (
	// Phase1Proposals lists the accepted IKE proposals.
	Phase1Proposals = []string{"aes256-sha256", "aes256-sha384", "aes128-sha256"}
	// Phase2Proposals lists the accepted ESP proposals.
	Phase2Proposals = []string{"aes256-sha256", "aes256gcm"}
	// DHGroups lists the accepted Diffie-Hellman groups.
	DHGroups = []string{"14", "19", "20"}

	requiredFields = []string{
		FieldTunnelName,
		FieldInterface,
		FieldRemoteGW,
		FieldPSK,
		FieldPhase1Proposal,
		FieldPhase2Proposal,
		FieldDHGroup,
		FieldLocalSubnet,
		FieldRemoteSubnet,
	}
)

// Request is the validated, immutable form of one tunnel configuration request.
// PSK holds the plaintext pre-shared key and must never be logged.
type Request struct {
	TunnelName     string
	Interface      string
	RemoteGW       netip.Addr
	PSK            string
	Phase1Proposal string
	Phase2Proposal string
	DHGroup        string
	LocalSubnet    netip.Prefix
	RemoteSubnet   netip.Prefix
	LocalEndpoint  string
	LocalPort      string
	Mode           string
	Vendor         string
	TunnelLocalIP  netip.Prefix
	TunnelRemoteIP netip.Addr
	Environment    string
}

// HasTunnelIPs reports whether both tunnel interface addresses are set.
func (r *Request) HasTunnelIPs() bool {
	return r.TunnelLocalIP.IsValid() && r.TunnelRemoteIP.IsValid()
}

// RequiresTunnelIPs reports whether vendor needs tunnel interface addressing.
func RequiresTunnelIPs(vendor string) bool {
	return vendor == VendorPaloAlto || vendor == VendorCisco
}

// RegisteredVendors returns the vendors that have a dedicated template.
func RegisteredVendors() []string {
	return []string{VendorFortiGate, VendorFortiManager, VendorPaloAlto, VendorCisco}
}
