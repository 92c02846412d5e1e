package scanner

import (
	"context"
	"net/netip"
	"time"

	"github.com/projectdiscovery/arpscan/pkg/frame"
	"github.com/projectdiscovery/arpscan/pkg/pacing"
	"github.com/projectdiscovery/gologger"
)

// stopReason tells why the sender returned
type stopReason int

const (
	stopCompleted stopReason = iota
	stopDeadline
	stopInterrupted
)

type sender struct {
	handle    Handle
	table     *Table
	pacer     *pacing.Pacer
	template  frame.Template
	interrupt *Interrupt

	retries    int
	retryDelay time.Duration
	timeout    time.Duration

	now func() time.Time
}

func newSender(cfg *Config, handle Handle, table *Table, pacer *pacing.Pacer, interrupt *Interrupt) *sender {
	return &sender{
		handle:     handle,
		table:      table,
		pacer:      pacer,
		template:   cfg.Template(),
		interrupt:  interrupt,
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
		now:        time.Now,
	}
}

// run sends the first pass in table order, then runs retry sweeps until
// every target is terminal. ctx carries the deadline and the interrupt; when
// it is done every remaining target is exhausted.
func (s *sender) run(ctx context.Context) (stopReason, error) {
	for _, ip := range s.table.Order() {
		if reason, stop := s.stopped(ctx); stop {
			return reason, nil
		}
		if err := s.send(ctx, ip); err != nil {
			return stopCompleted, err
		}
	}

	for {
		if reason, stop := s.stopped(ctx); stop {
			return reason, nil
		}
		due, next := s.table.Sweep(s.now(), s.retries, s.retryDelay, s.timeout)
		if len(due) == 0 && next.IsZero() {
			return stopCompleted, nil
		}
		for _, ip := range due {
			if reason, stop := s.stopped(ctx); stop {
				return reason, nil
			}
			if err := s.send(ctx, ip); err != nil {
				return stopCompleted, err
			}
		}
		if len(due) == 0 {
			sleepUntil(ctx, next)
		}
	}
}

// send transmits one request to ip unless it answered meanwhile, then waits
// one pacing delay.
func (s *sender) send(ctx context.Context, ip netip.Addr) error {
	if !s.table.MarkSent(ip, s.now()) {
		return nil
	}
	data, err := frame.Encode(frame.NewRequest(s.template, ip))
	if err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	if err := s.handle.WritePacketData(data); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	gologger.Debug().Msgf("Sent ARP request to %s", ip)

	_ = s.pacer.Wait(ctx)
	return nil
}

// stopped checks the iteration boundary. On a stop every non-terminal target
// is exhausted so no retry outlives the deadline.
func (s *sender) stopped(ctx context.Context) (stopReason, bool) {
	if ctx.Err() == nil {
		return stopCompleted, false
	}
	reason := stopDeadline
	if s.interrupt.Triggered() {
		reason = stopInterrupted
	}
	if n := s.table.ExhaustRemaining(); n > 0 && reason == stopDeadline {
		gologger.Verbose().Msgf("Scan deadline reached, %d targets left unanswered", n)
	}
	return reason, true
}

func sleepUntil(ctx context.Context, at time.Time) {
	timer := time.NewTimer(time.Until(at))
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
