package vpn

import (
	"fmt"

	"go4.org/netipx"
)

const fortiOSNameLimit = 15

// Lint returns advisory warnings about a validated request. Nothing it
// reports blocks rendering.
func Lint(req *Request) []string {
	if req == nil {
		return nil
	}
	warnings := []string{}

	if req.LocalSubnet.Addr().Is4() != req.RemoteSubnet.Addr().Is4() {
		warnings = append(warnings, fmt.Sprintf(
			"local_subnet %s and remote_subnet %s use different address families",
			req.LocalSubnet, req.RemoteSubnet,
		))
	}

	var localBuilder netipx.IPSetBuilder
	localBuilder.AddPrefix(req.LocalSubnet)
	local, err := localBuilder.IPSet()
	if err == nil {
		if local.OverlapsPrefix(req.RemoteSubnet) {
			warnings = append(warnings, fmt.Sprintf(
				"local_subnet %s overlaps remote_subnet %s; traffic selectors are ambiguous",
				req.LocalSubnet, req.RemoteSubnet,
			))
		}
		if local.Contains(req.RemoteGW) {
			warnings = append(warnings, fmt.Sprintf("remote_gw %s lies inside local_subnet %s", req.RemoteGW, req.LocalSubnet))
		}
	}
	if req.RemoteSubnet.Contains(req.RemoteGW) {
		warnings = append(warnings, fmt.Sprintf(
			"remote_gw %s lies inside remote_subnet %s; the tunnel would route its own peer",
			req.RemoteGW, req.RemoteSubnet,
		))
	}

	if (req.Vendor == VendorFortiGate || req.Vendor == VendorFortiManager) && len(req.TunnelName) > fortiOSNameLimit {
		warnings = append(warnings, fmt.Sprintf(
			"tunnel_name is %d characters; FortiOS limits phase1-interface names to %d",
			len(req.TunnelName), fortiOSNameLimit,
		))
	}

	if req.HasTunnelIPs() {
		network := req.TunnelLocalIP.Masked()
		switch {
		case req.TunnelLocalIP.Addr() == req.TunnelRemoteIP:
			warnings = append(warnings, "tunnel_remote_ip must differ from the tunnel_local_ip address")
		case !network.Contains(req.TunnelRemoteIP):
			warnings = append(warnings, fmt.Sprintf(
				"tunnel_remote_ip %s is outside the tunnel network %s (last address %s)",
				req.TunnelRemoteIP, network, netipx.PrefixLastIP(network),
			))
		}
	}
	return warnings
}
