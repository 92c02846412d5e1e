package frame

import (
	"bytes"
	"errors"
	"net"
	"net/netip"
	"reflect"
	"testing"
)

var (
	testSourceMAC = net.HardwareAddr{0x02, 0x42, 0xac, 0x11, 0x00, 0x02}
	testSourceIP  = netip.MustParseAddr("192.168.1.10")
	testTarget    = netip.MustParseAddr("192.168.1.1")
)

func TestEncodeRequestLayout(t *testing.T) {
	raw, err := Encode(NewRequest(DefaultTemplate(testSourceMAC, testSourceIP), testTarget))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(raw) != 60 {
		t.Fatalf("Encode() length = %d, want 60 (padded)", len(raw))
	}

	want := []byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, // destination
		0x02, 0x42, 0xac, 0x11, 0x00, 0x02, // source
		0x08, 0x06, // ethertype
		0x00, 0x01, 0x08, 0x00, 0x06, 0x04, 0x00, 0x01, // hw type, proto type, lens, opcode
		0x02, 0x42, 0xac, 0x11, 0x00, 0x02, // sender MAC
		192, 168, 1, 10, // sender IP
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // target MAC
		192, 168, 1, 1, // target IP
	}
	if !bytes.Equal(raw[:RequestSize(false)], want) {
		t.Errorf("Encode() = % x, want % x", raw[:RequestSize(false)], want)
	}
	for i, b := range raw[RequestSize(false):] {
		if b != 0 {
			t.Fatalf("padding byte %d = 0x%02x, want 0", i, b)
		}
	}
}

func TestEncodeVLANLayout(t *testing.T) {
	tmpl := DefaultTemplate(testSourceMAC, testSourceIP)
	tmpl.VLAN = &VLANTag{Priority: DefaultVLANPriority, ID: 42}

	raw, err := Encode(NewRequest(tmpl, testTarget))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// TPID, then PCP=1 DEI=0 VID=42, then the inner ethertype
	tag := raw[12:18]
	want := []byte{0x81, 0x00, 0x20, 0x2a, 0x08, 0x06}
	if !bytes.Equal(tag, want) {
		t.Errorf("VLAN tag = % x, want % x", tag, want)
	}
	if got := raw[18:20]; !bytes.Equal(got, []byte{0x00, 0x01}) {
		t.Errorf("ARP payload shifted: hw type bytes = % x", got)
	}
}

func TestRoundTrip(t *testing.T) {
	tagged := DefaultTemplate(testSourceMAC, testSourceIP)
	tagged.VLAN = &VLANTag{Priority: 5, ID: 4094}

	overridden := DefaultTemplate(testSourceMAC, testSourceIP)
	overridden.Destination = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	overridden.HardwareType = 0x1234
	overridden.ProtocolType = 0x86dd
	overridden.HardwareLen = 8
	overridden.ProtocolLen = 16
	overridden.Operation = OpReply

	tests := []struct {
		name string
		tmpl Template
	}{
		{name: "untagged request", tmpl: DefaultTemplate(testSourceMAC, testSourceIP)},
		{name: "tagged request", tmpl: tagged},
		{name: "overridden header fields", tmpl: overridden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := NewRequest(tt.tmpl, testTarget)

			raw, err := Encode(original)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			decoded, err := Decode(raw)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(decoded, original) {
				t.Errorf("Decode(Encode(f)) = %+v, want %+v", decoded, original)
			}
			if (decoded.VLAN != nil) != (tt.tmpl.VLAN != nil) {
				t.Errorf("VLAN presence = %v, want %v", decoded.VLAN != nil, tt.tmpl.VLAN != nil)
			}

			again, err := Encode(decoded)
			if err != nil {
				t.Fatalf("Encode(Decode(b)) error = %v", err)
			}
			if !bytes.Equal(again, raw) {
				t.Errorf("Encode(Decode(b)) = % x, want % x", again, raw)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	valid, err := Encode(NewRequest(DefaultTemplate(testSourceMAC, testSourceIP), testTarget))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: nil},
		{name: "shorter than ethernet header", input: valid[:10]},
		{name: "truncated ARP payload", input: valid[:HeaderLen+10]},
		{name: "truncated VLAN tag", input: append(append([]byte{}, valid[:12]...), 0x81, 0x00, 0x00)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			var frameErr *FrameError
			if !errors.As(err, &frameErr) {
				t.Fatalf("Decode() error = %v, want *FrameError", err)
			}
		})
	}
}

func TestDecodeNonARP(t *testing.T) {
	raw := make([]byte, 60)
	copy(raw[0:6], BroadcastMAC)
	copy(raw[6:12], testSourceMAC)
	raw[12], raw[13] = 0x08, 0x00 // IPv4

	f, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if f.EtherType != 0x0800 {
		t.Errorf("EtherType = 0x%04x, want 0x0800", f.EtherType)
	}
	if f.ARP != nil {
		t.Errorf("ARP = %+v, want nil for IPv4 payload", f.ARP)
	}
}

func TestDecodeTaggedNonARP(t *testing.T) {
	raw := make([]byte, 60)
	copy(raw[0:6], BroadcastMAC)
	copy(raw[6:12], testSourceMAC)
	copy(raw[12:18], []byte{0x81, 0x00, 0x00, 0x07, 0x86, 0xdd})

	f, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if f.VLAN == nil || f.VLAN.ID != 7 {
		t.Fatalf("VLAN = %+v, want ID 7", f.VLAN)
	}
	if f.EtherType != 0x86dd || f.ARP != nil {
		t.Errorf("got ethertype 0x%04x arp %v, want 0x86dd and no ARP", f.EtherType, f.ARP)
	}
}

func TestEncodeInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Frame)
	}{
		{name: "short source MAC", mutate: func(f *Frame) { f.Source = net.HardwareAddr{1, 2, 3} }},
		{name: "IPv6 target", mutate: func(f *Frame) { f.ARP.TargetIP = netip.MustParseAddr("fe80::1") }},
		{name: "VLAN id too large", mutate: func(f *Frame) { f.VLAN = &VLANTag{ID: 0x1000} }},
		{name: "VLAN priority too large", mutate: func(f *Frame) { f.VLAN = &VLANTag{Priority: 8, ID: 1} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewRequest(DefaultTemplate(testSourceMAC, testSourceIP), testTarget)
			tt.mutate(&f)

			_, err := Encode(f)
			var frameErr *FrameError
			if !errors.As(err, &frameErr) {
				t.Fatalf("Encode() error = %v, want *FrameError", err)
			}
		})
	}
}

func TestReplyOpcode(t *testing.T) {
	tests := []struct {
		request uint16
		want    uint16
	}{
		{request: OpRequest, want: OpReply},
		{request: 3, want: 4},
		{request: 8, want: 9},
		{request: OpReply, want: OpReply},
		{request: 0x1234, want: OpReply},
	}
	for _, tt := range tests {
		if got := ReplyOpcode(tt.request); got != tt.want {
			t.Errorf("ReplyOpcode(%d) = %d, want %d", tt.request, got, tt.want)
		}
	}
}

func TestRequestSize(t *testing.T) {
	if got := RequestSize(false); got != 42 {
		t.Errorf("RequestSize(false) = %d, want 42", got)
	}
	if got := RequestSize(true); got != 46 {
		t.Errorf("RequestSize(true) = %d, want 46", got)
	}
}
