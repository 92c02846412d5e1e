package frame

import (
	"encoding/binary"
	"net"
	"net/netip"
)

const (
	// HardwareTypeEthernet is the ARP hardware type for Ethernet (10Mb)
	HardwareTypeEthernet uint16 = 1
	// ProtocolTypeIPv4 is the ARP protocol type for IPv4
	ProtocolTypeIPv4 uint16 = 0x0800
	// HardwareLenEthernet is the length of an Ethernet MAC address
	HardwareLenEthernet uint8 = 6
	// ProtocolLenIPv4 is the length of an IPv4 address
	ProtocolLenIPv4 uint8 = 4

	// OpRequest is the ARP request opcode
	OpRequest uint16 = 1
	// OpReply is the ARP reply opcode
	OpReply uint16 = 2

	// ARPLen is the size of an Ethernet/IPv4 ARP payload
	ARPLen = 28
)

// ARP is an Ethernet/IPv4 ARP payload. Length fields are carried verbatim and
// do not influence the layout.
type ARP struct {
	HardwareType uint16
	ProtocolType uint16
	HardwareLen  uint8
	ProtocolLen  uint8
	Operation    uint16
	SenderMAC    net.HardwareAddr
	SenderIP     netip.Addr
	TargetMAC    net.HardwareAddr
	TargetIP     netip.Addr
}

// MarshalBinary returns the 28 byte wire representation of the payload.
func (a *ARP) MarshalBinary() ([]byte, error) {
	if len(a.SenderMAC) != 6 {
		return nil, newFrameError("arp", "invalid sender MAC %v", a.SenderMAC)
	}
	if len(a.TargetMAC) != 6 {
		return nil, newFrameError("arp", "invalid target MAC %v", a.TargetMAC)
	}
	if !a.SenderIP.Is4() {
		return nil, newFrameError("arp", "sender address %v is not IPv4", a.SenderIP)
	}
	if !a.TargetIP.Is4() {
		return nil, newFrameError("arp", "target address %v is not IPv4", a.TargetIP)
	}

	b := make([]byte, ARPLen)
	binary.BigEndian.PutUint16(b[0:2], a.HardwareType)
	binary.BigEndian.PutUint16(b[2:4], a.ProtocolType)
	b[4] = a.HardwareLen
	b[5] = a.ProtocolLen
	binary.BigEndian.PutUint16(b[6:8], a.Operation)
	copy(b[8:14], a.SenderMAC)
	sender := a.SenderIP.As4()
	copy(b[14:18], sender[:])
	copy(b[18:24], a.TargetMAC)
	target := a.TargetIP.As4()
	copy(b[24:28], target[:])
	return b, nil
}

// UnmarshalBinary parses an ARP payload. Trailing bytes (Ethernet padding)
// are ignored.
func (a *ARP) UnmarshalBinary(b []byte) error {
	if len(b) < ARPLen {
		return newFrameError("arp", "payload length %d too short", len(b))
	}

	a.HardwareType = binary.BigEndian.Uint16(b[0:2])
	a.ProtocolType = binary.BigEndian.Uint16(b[2:4])
	a.HardwareLen = b[4]
	a.ProtocolLen = b[5]
	a.Operation = binary.BigEndian.Uint16(b[6:8])
	a.SenderMAC = cloneMAC(b[8:14])
	a.SenderIP = netip.AddrFrom4([4]byte(b[14:18]))
	a.TargetMAC = cloneMAC(b[18:24])
	a.TargetIP = netip.AddrFrom4([4]byte(b[24:28]))
	return nil
}

// ReplyOpcode returns the opcode a host answers with when probed with op.
// ARP (1/2), RARP (3/4) and InARP (8/9) requests expect their paired reply;
// any other opcode is expected to be answered with a regular ARP reply.
func ReplyOpcode(op uint16) uint16 {
	switch op {
	case 8:
		return 9
	case 1, 3:
		return op + 1
	}
	return OpReply
}

func cloneMAC(b []byte) net.HardwareAddr {
	mac := make(net.HardwareAddr, len(b))
	copy(mac, b)
	return mac
}
