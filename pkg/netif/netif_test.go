package netif

import (
	"net/netip"
	"testing"

	psnet "github.com/shirou/gopsutil/v3/net"
)

func TestFromStat(t *testing.T) {
	tests := []struct {
		name         string
		stat         psnet.InterfaceStat
		wantUsable   bool
		wantNetworks []string
	}{
		{
			name: "ethernet with IPv4 and IPv6",
			stat: psnet.InterfaceStat{
				Index:        2,
				Name:         "eth0",
				HardwareAddr: "02:42:ac:11:00:02",
				Flags:        []string{"up", "broadcast", "multicast"},
				Addrs: psnet.InterfaceAddrList{
					{Addr: "172.17.0.2/16"},
					{Addr: "fe80::42:acff:fe11:2/64"},
					{Addr: "172.17.0.3/16"},
					{Addr: "10.0.0.5/24"},
				},
			},
			wantUsable:   true,
			wantNetworks: []string{"172.17.0.2/16", "10.0.0.5/24"},
		},
		{
			name: "loopback",
			stat: psnet.InterfaceStat{
				Index: 1,
				Name:  "lo",
				Flags: []string{"up", "loopback"},
				Addrs: psnet.InterfaceAddrList{{Addr: "127.0.0.1/8"}},
			},
			wantUsable:   false,
			wantNetworks: []string{"127.0.0.1/8"},
		},
		{
			name: "down interface",
			stat: psnet.InterfaceStat{
				Index:        3,
				Name:         "wlan0",
				HardwareAddr: "aa:bb:cc:dd:ee:ff",
				Flags:        []string{"broadcast"},
				Addrs:        psnet.InterfaceAddrList{{Addr: "192.168.1.20/24"}},
			},
			wantUsable:   false,
			wantNetworks: []string{"192.168.1.20/24"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iface := fromStat(tt.stat)
			if iface.Name != tt.stat.Name || iface.Index != tt.stat.Index {
				t.Errorf("name/index = %s/%d, want %s/%d", iface.Name, iface.Index, tt.stat.Name, tt.stat.Index)
			}
			if got := iface.Usable(); got != tt.wantUsable {
				t.Errorf("Usable() = %v, want %v", got, tt.wantUsable)
			}
			if len(iface.Networks) != len(tt.wantNetworks) {
				t.Fatalf("Networks = %v, want %v", iface.Networks, tt.wantNetworks)
			}
			for i, want := range tt.wantNetworks {
				if iface.Networks[i] != netip.MustParsePrefix(want) {
					t.Errorf("Networks[%d] = %s, want %s", i, iface.Networks[i], want)
				}
			}
		})
	}
}

func TestFirstNetwork(t *testing.T) {
	if _, ok := (Interface{}).FirstNetwork(); ok {
		t.Error("FirstNetwork() on empty interface returned ok")
	}
	iface := Interface{Networks: []netip.Prefix{netip.MustParsePrefix("192.168.1.10/24")}}
	network, ok := iface.FirstNetwork()
	if !ok || network.String() != "192.168.1.10/24" {
		t.Errorf("FirstNetwork() = %s, %v", network, ok)
	}
}
