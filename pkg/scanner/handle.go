package scanner

import "github.com/google/gopacket"

// Handle transmits and receives raw Ethernet frames on one interface.
// ReadPacketData must return ErrReadTimeout, rather than block forever, when
// no frame arrived within its read timeout. *capture.Handle implements it
// over libpcap.
type Handle interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	WritePacketData(data []byte) error
}
