// Package targets expands an IPv4 network into the ordered list of hosts
// probed by an ARP scan.
package targets

import (
	"fmt"
	"math/rand"
	"net/netip"
	"slices"

	"github.com/projectdiscovery/mapcidr"
)

// Enumerate returns the host addresses of network in ascending order,
// excluding the network and broadcast addresses when the prefix has both
// (/30 and shorter). A /31 or /32 yields every address.
//
// When randomize is set the sequence is shuffled with rnd, which must be
// non-nil; seed it for reproducible orders.
func Enumerate(network netip.Prefix, randomize bool, rnd *rand.Rand) ([]netip.Addr, error) {
	if !network.IsValid() {
		return nil, fmt.Errorf("invalid network")
	}
	if !network.Addr().Is4() {
		return nil, fmt.Errorf("network %s is not IPv4", network)
	}
	if randomize && rnd == nil {
		return nil, fmt.Errorf("randomized enumeration requires a random source")
	}

	network = network.Masked()
	ips, err := mapcidr.IPAddresses(network.String())
	if err != nil {
		return nil, fmt.Errorf("failed to expand CIDR %s: %w", network, err)
	}

	hosts := make([]netip.Addr, 0, len(ips))
	for _, ipStr := range ips {
		ip, err := netip.ParseAddr(ipStr)
		if err != nil {
			continue
		}
		ip = ip.Unmap()
		if IsNetworkOrBroadcast(ip, network) {
			continue
		}
		hosts = append(hosts, ip)
	}

	slices.SortFunc(hosts, func(a, b netip.Addr) int { return a.Compare(b) })
	hosts = slices.Compact(hosts)

	if randomize {
		rnd.Shuffle(len(hosts), func(i, j int) {
			hosts[i], hosts[j] = hosts[j], hosts[i]
		})
	}
	return hosts, nil
}

// IsNetworkOrBroadcast checks if ip is the network or broadcast address of
// network. Point-to-point (/31) and host (/32) prefixes have neither.
func IsNetworkOrBroadcast(ip netip.Addr, network netip.Prefix) bool {
	if !ip.Is4() || network.Bits() > 30 {
		return false
	}
	network = network.Masked()
	if ip == network.Addr() {
		return true
	}
	return ip == Broadcast(network)
}

// Broadcast returns the all-ones host address of an IPv4 network.
func Broadcast(network netip.Prefix) netip.Addr {
	b := network.Masked().Addr().As4()
	hostBits := 32 - network.Bits()
	for i := 3; i >= 0 && hostBits > 0; i-- {
		n := hostBits
		if n > 8 {
			n = 8
		}
		b[i] |= byte(0xff >> (8 - n))
		hostBits -= n
	}
	return netip.AddrFrom4(b)
}

// Count returns the number of hosts Enumerate yields for network.
func Count(network netip.Prefix) int {
	bits := network.Bits()
	if bits < 0 || !network.Addr().Is4() {
		return 0
	}
	size := 1 << (32 - bits)
	if bits <= 30 {
		size -= 2
	}
	return size
}
