// Package netif describes the local network interfaces an ARP scan can be
// bound to.
package netif

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// ErrNotFound is returned when no interface matches the requested name
var ErrNotFound = errors.New("interface not found")

// Interface describes a network interface
type Interface struct {
	Name     string
	Index    int
	MAC      net.HardwareAddr
	Networks []netip.Prefix // IPv4 networks attached to the interface
	Up       bool
	Loopback bool
}

// FirstNetwork returns the first IPv4 network attached to the interface.
// The prefix keeps the interface address (it is not masked).
func (i Interface) FirstNetwork() (netip.Prefix, bool) {
	if len(i.Networks) == 0 {
		return netip.Prefix{}, false
	}
	return i.Networks[0], true
}

// Usable reports whether the interface can carry an ARP scan
func (i Interface) Usable() bool {
	return i.Up && !i.Loopback && len(i.MAC) == 6 && len(i.Networks) > 0
}

// List returns every interface of the host
func List() ([]Interface, error) {
	stats, err := psnet.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	interfaces := make([]Interface, 0, len(stats))
	for _, stat := range stats {
		interfaces = append(interfaces, fromStat(stat))
	}
	return interfaces, nil
}

// Lookup returns the interface with the given name
func Lookup(name string) (Interface, error) {
	interfaces, err := List()
	if err != nil {
		return Interface{}, err
	}
	for _, iface := range interfaces {
		if iface.Name == name {
			return iface, nil
		}
	}
	return Interface{}, fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Default returns the first up, non-loopback interface with a MAC address
// and an IPv4 network
func Default() (Interface, error) {
	interfaces, err := List()
	if err != nil {
		return Interface{}, err
	}
	for _, iface := range interfaces {
		if iface.Usable() {
			return iface, nil
		}
	}
	return Interface{}, fmt.Errorf("no usable interface: %w", ErrNotFound)
}

func fromStat(stat psnet.InterfaceStat) Interface {
	iface := Interface{
		Name:  stat.Name,
		Index: stat.Index,
	}
	for _, flag := range stat.Flags {
		switch strings.ToLower(flag) {
		case "up":
			iface.Up = true
		case "loopback":
			iface.Loopback = true
		}
	}
	if mac, err := net.ParseMAC(stat.HardwareAddr); err == nil {
		iface.MAC = mac
	}

	seen := make(map[netip.Prefix]struct{})
	for _, addr := range stat.Addrs {
		prefix, err := netip.ParsePrefix(addr.Addr)
		if err != nil {
			continue
		}
		// Only process IPv4 addresses
		if !prefix.Addr().Is4() {
			continue
		}
		if _, exists := seen[prefix.Masked()]; exists {
			continue
		}
		seen[prefix.Masked()] = struct{}{}
		iface.Networks = append(iface.Networks, prefix)
	}
	return iface
}
