package scanner

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/projectdiscovery/arpscan/pkg/frame"
	"github.com/projectdiscovery/gologger"
)

type receiver struct {
	handle    Handle
	table     *Table
	interrupt *Interrupt

	vlan        *frame.VLANTag
	replyOpcode uint16

	now func() time.Time
}

func newReceiver(cfg *Config, handle Handle, table *Table, interrupt *Interrupt) *receiver {
	return &receiver{
		handle:      handle,
		table:       table,
		interrupt:   interrupt,
		vlan:        cfg.VLAN,
		replyOpcode: frame.ReplyOpcode(cfg.Opcode),
		now:         time.Now,
	}
}

// run reads frames until ctx is done. A read timeout only returns control to
// the loop so cancellation is observed promptly.
func (r *receiver) run(ctx context.Context) error {
	for {
		if ctx.Err() != nil || r.interrupt.Triggered() {
			return nil
		}
		data, ci, err := r.handle.ReadPacketData()
		if err != nil {
			switch {
			case errors.Is(err, ErrReadTimeout):
				continue
			case ctx.Err() != nil:
				return nil
			case errors.Is(err, io.EOF):
				gologger.Verbose().Msgf("Capture ended: %s", err)
				return nil
			}
			return &TransportError{Op: "receive", Err: err}
		}
		if r.interrupt.Triggered() {
			return nil
		}
		r.handleFrame(data, ci.Timestamp)
	}
}

func (r *receiver) handleFrame(data []byte, at time.Time) {
	f, err := frame.Decode(data)
	if err != nil {
		gologger.Debug().Msgf("Dropped frame: %s", err)
		r.table.Filtered()
		return
	}
	if f.ARP == nil {
		r.table.Filtered()
		return
	}
	if r.vlan != nil && f.VLAN != nil && f.VLAN.ID != r.vlan.ID {
		gologger.Debug().Msgf("Dropped reply from %s tagged with VLAN %d", f.ARP.SenderIP, f.VLAN.ID)
		r.table.Filtered()
		return
	}
	if f.ARP.Operation != r.replyOpcode {
		r.table.Filtered()
		return
	}

	if at.IsZero() {
		at = r.now()
	}
	outcome := r.table.MarkAnswered(f.ARP.SenderIP, f.ARP.SenderMAC, at)
	gologger.Debug().Msgf("Reply from %s (%s): %s", f.ARP.SenderIP, f.ARP.SenderMAC, outcome)
}
