package targets

import (
	"math/rand"
	"net/netip"
	"slices"
	"testing"
)

func TestEnumerate(t *testing.T) {
	tests := []struct {
		name      string
		cidr      string
		wantCount int
		wantFirst string
		wantLast  string
	}{
		{name: "/24 excludes network and broadcast", cidr: "192.168.1.0/24", wantCount: 254, wantFirst: "192.168.1.1", wantLast: "192.168.1.254"},
		{name: "/30 has two hosts", cidr: "192.168.1.0/30", wantCount: 2, wantFirst: "192.168.1.1", wantLast: "192.168.1.2"},
		{name: "/31 keeps both addresses", cidr: "10.0.0.0/31", wantCount: 2, wantFirst: "10.0.0.0", wantLast: "10.0.0.1"},
		{name: "/32 keeps the host", cidr: "10.0.0.7/32", wantCount: 1, wantFirst: "10.0.0.7", wantLast: "10.0.0.7"},
		{name: "host bits are masked", cidr: "172.16.5.77/29", wantCount: 6, wantFirst: "172.16.5.73", wantLast: "172.16.5.78"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hosts, err := Enumerate(netip.MustParsePrefix(tt.cidr), false, nil)
			if err != nil {
				t.Fatalf("Enumerate() error = %v", err)
			}
			if len(hosts) != tt.wantCount {
				t.Fatalf("Enumerate() count = %d, want %d", len(hosts), tt.wantCount)
			}
			if got := hosts[0].String(); got != tt.wantFirst {
				t.Errorf("first host = %s, want %s", got, tt.wantFirst)
			}
			if got := hosts[len(hosts)-1].String(); got != tt.wantLast {
				t.Errorf("last host = %s, want %s", got, tt.wantLast)
			}
			if !slices.IsSortedFunc(hosts, func(a, b netip.Addr) int { return a.Compare(b) }) {
				t.Error("hosts are not in ascending order")
			}
			if got := Count(netip.MustParsePrefix(tt.cidr)); got != tt.wantCount {
				t.Errorf("Count() = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestEnumerateDeterministic(t *testing.T) {
	network := netip.MustParsePrefix("10.1.2.0/26")
	first, err := Enumerate(network, false, nil)
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	second, err := Enumerate(network, false, nil)
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if !slices.Equal(first, second) {
		t.Error("two enumerations of the same network differ")
	}
}

func TestEnumerateRandomized(t *testing.T) {
	network := netip.MustParsePrefix("192.168.0.0/24")
	ordered, err := Enumerate(network, false, nil)
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}

	shuffled, err := Enumerate(network, true, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if len(shuffled) != len(ordered) {
		t.Fatalf("shuffled count = %d, want %d", len(shuffled), len(ordered))
	}
	if slices.Equal(shuffled, ordered) {
		t.Error("shuffled sequence equals the ordered one")
	}

	sorted := slices.Clone(shuffled)
	slices.SortFunc(sorted, func(a, b netip.Addr) int { return a.Compare(b) })
	if !slices.Equal(sorted, ordered) {
		t.Error("shuffled sequence is not a permutation of the ordered one")
	}

	again, err := Enumerate(network, true, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if !slices.Equal(again, shuffled) {
		t.Error("same seed produced a different order")
	}
}

func TestEnumerateInvalid(t *testing.T) {
	tests := []struct {
		name      string
		network   netip.Prefix
		randomize bool
	}{
		{name: "zero prefix", network: netip.Prefix{}},
		{name: "IPv6 prefix", network: netip.MustParsePrefix("fe80::/64")},
		{name: "randomize without source", network: netip.MustParsePrefix("10.0.0.0/24"), randomize: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Enumerate(tt.network, tt.randomize, nil); err == nil {
				t.Error("Enumerate() error = nil, want error")
			}
		})
	}
}

func TestBroadcast(t *testing.T) {
	tests := []struct {
		cidr string
		want string
	}{
		{cidr: "192.168.1.0/24", want: "192.168.1.255"},
		{cidr: "10.0.0.0/8", want: "10.255.255.255"},
		{cidr: "172.16.4.0/22", want: "172.16.7.255"},
		{cidr: "192.168.1.4/30", want: "192.168.1.7"},
	}
	for _, tt := range tests {
		if got := Broadcast(netip.MustParsePrefix(tt.cidr)); got.String() != tt.want {
			t.Errorf("Broadcast(%s) = %s, want %s", tt.cidr, got, tt.want)
		}
	}
}
