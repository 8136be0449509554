package util

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// InterfaceIPv4 returns the first IPv4 address bound to an interface.
func InterfaceIPv4(name string) (string, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return "", err
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return "", err
	}
	for _, addr := range addrs {
		prefix, err := netip.ParsePrefix(addr.String())
		if err != nil {
			continue
		}
		if ip := prefix.Addr().Unmap(); ip.Is4() {
			return ip.String(), nil
		}
	}
	return "", errors.New("no IPv4 address found")
}

// ResolveListenAddress combines the configured listen address with an
// optional interface name. When the interface resolves to an IPv4 address the
// server binds to it on the configured port.
func ResolveListenAddress(defaultAddr, listenInterface string, lookup func(string) (string, error)) (string, error) {
	host, port, err := net.SplitHostPort(defaultAddr)
	if err != nil {
		trimmed := strings.TrimPrefix(defaultAddr, ":")
		if trimmed == "" {
			port = "8080"
		} else {
			port = trimmed
		}
		host = ""
	}
	fallback := net.JoinHostPort(host, port)
	if listenInterface == "" {
		return fallback, nil
	}
	if lookup == nil {
		lookup = InterfaceIPv4
	}
	ip, err := lookup(listenInterface)
	if err != nil || ip == "" {
		return fallback, fmt.Errorf("resolve listen interface %s: %w", listenInterface, err)
	}
	return net.JoinHostPort(ip, port), nil
}
