// Package frame encodes and decodes the raw Ethernet frames exchanged by an
// ARP scan.
//
// A frame is an Ethernet II header, an optional IEEE 802.1Q tag inserted
// between the source MAC and the ethertype, and an ARP payload:
//
//	dst MAC (6) | src MAC (6) | [0x8100 (2) | PCP+DEI+VID (2)] | ethertype (2) | ARP (28)
//
// The ARP payload always uses the fixed Ethernet/IPv4 layout (6 byte hardware
// addresses, 4 byte protocol addresses) even when the length fields carry
// overridden values, so that probing hosts with unusual headers never shifts
// the address offsets.
//
// Example usage:
//
//	tmpl := frame.DefaultTemplate(srcMAC, srcIP)
//	raw, err := frame.Encode(frame.NewRequest(tmpl, target))
//
//	decoded, err := frame.Decode(raw)
//	if decoded.ARP != nil && decoded.ARP.Operation == frame.OpReply {
//		// ...
//	}
package frame
