// Package capture opens the raw frame handle a scan sends and reads ARP
// frames through, using libpcap.
package capture

import (
	"errors"
	"strings"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	"github.com/projectdiscovery/arpscan/pkg/scanner"
)

const (
	// DefaultSnapLen is the snapshot length of the capture
	DefaultSnapLen = 1600
	// DefaultPromisc enables promiscuous mode so replies to spoofed sources are seen
	DefaultPromisc = true
	// DefaultReadTimeout bounds a single read so the receiver can observe cancellation
	DefaultReadTimeout = 100 * time.Millisecond
	// Filter keeps ARP frames, tagged or not
	Filter = "arp or (vlan and arp)"
)

// Handle is a live pcap handle bound to one interface
type Handle struct {
	iface  string
	handle *pcap.Handle
}

// Open starts a live capture on iface with the default settings
func Open(iface string) (*Handle, error) {
	return OpenWithTimeout(iface, DefaultReadTimeout)
}

// OpenWithTimeout starts a live capture on iface. Failures are returned as
// *scanner.InterfaceError.
func OpenWithTimeout(iface string, readTimeout time.Duration) (*Handle, error) {
	handle, err := pcap.OpenLive(iface, DefaultSnapLen, DefaultPromisc, readTimeout)
	if err != nil {
		return nil, &scanner.InterfaceError{Interface: iface, Reason: openReason(err), Err: err}
	}
	if err := handle.SetBPFFilter(Filter); err != nil {
		handle.Close()
		return nil, &scanner.InterfaceError{Interface: iface, Reason: scanner.ReasonOpen, Err: err}
	}
	return &Handle{iface: iface, handle: handle}, nil
}

// ReadPacketData returns the next captured frame, or scanner.ErrReadTimeout
// when none arrived within the read timeout.
func (h *Handle) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := h.handle.ReadPacketData()
	if errors.Is(err, pcap.NextErrorTimeoutExpired) {
		return nil, ci, scanner.ErrReadTimeout
	}
	return data, ci, err
}

// WritePacketData transmits one frame
func (h *Handle) WritePacketData(data []byte) error {
	return h.handle.WritePacketData(data)
}

// Interface returns the name of the capture interface
func (h *Handle) Interface() string {
	return h.iface
}

// Close releases the pcap handle
func (h *Handle) Close() {
	h.handle.Close()
}

func openReason(err error) scanner.InterfaceReason {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission") || strings.Contains(msg, "not permitted"):
		return scanner.ReasonPermission
	case strings.Contains(msg, "no such device") || strings.Contains(msg, "no such interface"):
		return scanner.ReasonNotFound
	}
	return scanner.ReasonOpen
}

var _ scanner.Handle = (*Handle)(nil)
