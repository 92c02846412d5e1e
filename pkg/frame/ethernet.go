package frame

import (
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// EtherTypeARP is the ethertype of an ARP payload
	EtherTypeARP uint16 = 0x0806
	// EtherTypeVLAN is the 802.1Q tag protocol identifier
	EtherTypeVLAN uint16 = 0x8100

	// HeaderLen is the size of an untagged Ethernet header
	HeaderLen = 14
	// VLANTagLen is the size of an 802.1Q tag
	VLANTagLen = 4

	// MaxVLANID is the largest assignable VLAN identifier (4095 is reserved)
	MaxVLANID = 4094
	// DefaultVLANPriority is the priority code point used for tagged requests
	DefaultVLANPriority uint8 = 1
)

var (
	// BroadcastMAC is the Ethernet broadcast address
	BroadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	// ZeroMAC is the unknown hardware address carried in ARP requests
	ZeroMAC = net.HardwareAddr{0, 0, 0, 0, 0, 0}
)

// VLANTag is an IEEE 802.1Q tag
type VLANTag struct {
	Priority     uint8 // 3 bits
	DropEligible bool
	ID           uint16 // 12 bits
}

// Ethernet is an Ethernet II header with an optional VLAN tag. EtherType is
// the type of the payload after the tag has been unwrapped.
type Ethernet struct {
	Destination net.HardwareAddr
	Source      net.HardwareAddr
	VLAN        *VLANTag
	EtherType   uint16
}

// Frame is a decoded Ethernet frame. ARP is nil when the payload is not ARP.
type Frame struct {
	Ethernet
	ARP *ARP
}

// Template holds the header values used to build every request of a scan.
type Template struct {
	Destination  net.HardwareAddr
	SourceMAC    net.HardwareAddr
	SourceIP     netip.Addr
	VLAN         *VLANTag
	HardwareType uint16
	ProtocolType uint16
	HardwareLen  uint8
	ProtocolLen  uint8
	Operation    uint16
}

// DefaultTemplate returns a broadcast ARP request template using protocol
// defaults.
func DefaultTemplate(sourceMAC net.HardwareAddr, sourceIP netip.Addr) Template {
	return Template{
		Destination:  BroadcastMAC,
		SourceMAC:    sourceMAC,
		SourceIP:     sourceIP,
		HardwareType: HardwareTypeEthernet,
		ProtocolType: ProtocolTypeIPv4,
		HardwareLen:  HardwareLenEthernet,
		ProtocolLen:  ProtocolLenIPv4,
		Operation:    OpRequest,
	}
}

// NewRequest builds the request frame probing target.
func NewRequest(t Template, target netip.Addr) Frame {
	return Frame{
		Ethernet: Ethernet{
			Destination: t.Destination,
			Source:      t.SourceMAC,
			VLAN:        t.VLAN,
			EtherType:   EtherTypeARP,
		},
		ARP: &ARP{
			HardwareType: t.HardwareType,
			ProtocolType: t.ProtocolType,
			HardwareLen:  t.HardwareLen,
			ProtocolLen:  t.ProtocolLen,
			Operation:    t.Operation,
			SenderMAC:    t.SourceMAC,
			SenderIP:     t.SourceIP,
			TargetMAC:    ZeroMAC,
			TargetIP:     target,
		},
	}
}

// RequestSize returns the unpadded on-wire size of a request frame.
func RequestSize(tagged bool) int {
	if tagged {
		return HeaderLen + VLANTagLen + ARPLen
	}
	return HeaderLen + ARPLen
}

// Encode serializes f. Frames below the Ethernet minimum are zero padded to
// 60 bytes.
func Encode(f Frame) ([]byte, error) {
	if len(f.Destination) != 6 {
		return nil, newFrameError("ethernet", "invalid destination MAC %v", f.Destination)
	}
	if len(f.Source) != 6 {
		return nil, newFrameError("ethernet", "invalid source MAC %v", f.Source)
	}

	var payload []byte
	if f.ARP != nil {
		if f.EtherType != EtherTypeARP {
			return nil, newFrameError("ethernet", "ARP payload with ethertype 0x%04x", f.EtherType)
		}
		b, err := f.ARP.MarshalBinary()
		if err != nil {
			return nil, err
		}
		payload = b
	}

	serializable := make([]gopacket.SerializableLayer, 0, 3)
	eth := &layers.Ethernet{
		DstMAC:       f.Destination,
		SrcMAC:       f.Source,
		EthernetType: layers.EthernetType(f.EtherType),
	}
	serializable = append(serializable, eth)

	if f.VLAN != nil {
		if f.VLAN.ID > 0x0fff {
			return nil, newFrameError("vlan", "identifier %d out of range", f.VLAN.ID)
		}
		if f.VLAN.Priority > 7 {
			return nil, newFrameError("vlan", "priority %d out of range", f.VLAN.Priority)
		}
		eth.EthernetType = layers.EthernetTypeDot1Q
		serializable = append(serializable, &layers.Dot1Q{
			Priority:       f.VLAN.Priority,
			DropEligible:   f.VLAN.DropEligible,
			VLANIdentifier: f.VLAN.ID,
			Type:           layers.EthernetType(f.EtherType),
		})
	}
	serializable = append(serializable, gopacket.Payload(payload))

	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, serializable...); err != nil {
		return nil, &FrameError{Layer: "ethernet", Reason: "serialize", Err: err}
	}
	out := make([]byte, len(buf.Bytes()))
	copy(out, buf.Bytes())
	return out, nil
}

// Decode parses raw into a Frame. One 802.1Q tag is unwrapped; the ARP
// payload is parsed only when the inner ethertype is ARP.
func Decode(raw []byte) (Frame, error) {
	var f Frame

	var eth layers.Ethernet
	if len(raw) < HeaderLen {
		return f, newFrameError("ethernet", "frame length %d too short", len(raw))
	}
	if err := eth.DecodeFromBytes(raw, gopacket.NilDecodeFeedback); err != nil {
		return f, &FrameError{Layer: "ethernet", Reason: "decode", Err: err}
	}
	f.Destination = cloneMAC(eth.DstMAC)
	f.Source = cloneMAC(eth.SrcMAC)

	etherType := uint16(eth.EthernetType)
	payload := eth.Payload
	if etherType == EtherTypeVLAN {
		if len(payload) < VLANTagLen {
			return f, newFrameError("vlan", "tag length %d too short", len(payload))
		}
		var tag layers.Dot1Q
		if err := tag.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err != nil {
			return f, &FrameError{Layer: "vlan", Reason: "decode", Err: err}
		}
		f.VLAN = &VLANTag{
			Priority:     tag.Priority,
			DropEligible: tag.DropEligible,
			ID:           tag.VLANIdentifier,
		}
		etherType = uint16(tag.Type)
		payload = tag.Payload
	}
	f.EtherType = etherType

	if etherType != EtherTypeARP {
		return f, nil
	}

	arp := &ARP{}
	if err := arp.UnmarshalBinary(payload); err != nil {
		return f, err
	}
	f.ARP = arp
	return f, nil
}
