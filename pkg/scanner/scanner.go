package scanner

import (
	"context"
	"errors"
	"math/rand"
	"net/netip"
	"sync/atomic"
	"time"

	"github.com/projectdiscovery/arpscan/pkg/pacing"
	"github.com/projectdiscovery/arpscan/pkg/targets"
	"github.com/projectdiscovery/gologger"
	"github.com/rs/xid"
	"golang.org/x/sync/errgroup"
)

// ceilingSlack is added to the computed scan duration to absorb scheduling
// jitter before the deadline is enforced.
const ceilingSlack = 250 * time.Millisecond

// ErrAlreadyRun is returned when Run is called more than once
var ErrAlreadyRun = errors.New("scanner already ran")

// Result is the finalized outcome of a scan
type Result struct {
	ID        string        `json:"id"`
	Interface string        `json:"interface"`
	Network   netip.Prefix  `json:"network"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Hosts     []Host        `json:"hosts"`
	Counters

	// Interrupted is set when the interrupt stopped the scan; Hosts holds
	// the targets answered until then.
	Interrupted bool `json:"interrupted"`
	// TimedOut is set when the global deadline stopped the scan
	TimedOut bool `json:"timed_out"`
}

// Scanner runs one ARP scan over a Handle
type Scanner struct {
	cfg       Config
	handle    Handle
	pacer     *pacing.Pacer
	targets   []netip.Addr
	interrupt *Interrupt
	ran       atomic.Bool
}

// New validates cfg, enumerates the targets and prepares the pacing. It
// fails with a *ConfigError or an *InterfaceError before anything is sent.
func New(cfg Config, handle Handle) (*Scanner, error) {
	if handle == nil {
		return nil, configErrorf("handle", "no frame handle given")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pacer, err := pacing.New(cfg.Interval, cfg.Bandwidth, cfg.RequestSize())
	if err != nil {
		return nil, configErrorf("interval", "%s", err)
	}

	var rnd *rand.Rand
	if cfg.Randomize {
		rnd = rand.New(rand.NewSource(cfg.Seed))
	}
	ips, err := targets.Enumerate(cfg.Network, cfg.Randomize, rnd)
	if err != nil {
		return nil, configErrorf("network", "%s", err)
	}

	return &Scanner{
		cfg:       cfg,
		handle:    handle,
		pacer:     pacer,
		targets:   ips,
		interrupt: NewInterrupt(context.Background()),
	}, nil
}

// Interrupt returns the signal that stops the scan early with a partial result
func (s *Scanner) Interrupt() *Interrupt {
	return s.interrupt
}

// Targets returns the number of enumerated targets
func (s *Scanner) Targets() int {
	return len(s.targets)
}

// Pacer returns the rate controller of the scan
func (s *Scanner) Pacer() *pacing.Pacer {
	return s.pacer
}

// Estimate returns the expected duration of the scan, for display only
func (s *Scanner) Estimate() time.Duration {
	return s.pacer.Estimate(len(s.targets), s.cfg.Timeout)
}

// Ceiling returns the hard limit on the scan duration. Any retry still
// pending when it elapses is abandoned.
func (s *Scanner) Ceiling() time.Duration {
	n := time.Duration(len(s.targets))
	retries := time.Duration(s.cfg.Retries)
	return retries*n*s.pacer.Delay() + (retries-1)*s.cfg.RetryDelay + s.cfg.Timeout + ceilingSlack
}

// Run executes the scan and blocks until every target is terminal, the
// deadline elapses or the scan is interrupted. Cancelling ctx interrupts the
// scan. Only a *TransportError stops it with an error.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}
	stopInterrupt := context.AfterFunc(ctx, func() { s.interrupt.Trigger() })
	defer stopInterrupt()

	start := time.Now()
	table := NewTable(s.targets, start)
	deadline := start.Add(s.Ceiling())
	gologger.Verbose().Msgf("Scanning %d targets on %s (%s), deadline in %s", len(s.targets), s.cfg.Interface.Name, s.cfg.Network, s.Ceiling())

	g, gctx := errgroup.WithContext(context.Background())
	sendCtx, cancelSend := context.WithDeadline(gctx, deadline)
	defer cancelSend()
	stopSend := context.AfterFunc(s.interrupt.Context(), cancelSend)
	defer stopSend()
	recvCtx, cancelRecv := context.WithCancel(gctx)
	defer cancelRecv()

	snd := newSender(&s.cfg, s.handle, table, s.pacer, s.interrupt)
	rcv := newReceiver(&s.cfg, s.handle, table, s.interrupt)

	var reason stopReason
	g.Go(func() error {
		defer cancelRecv()
		var err error
		reason, err = snd.run(sendCtx)
		return err
	})
	g.Go(func() error {
		return rcv.run(recvCtx)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := table.Finalize(time.Now())
	result := &Result{
		ID:          xid.New().String(),
		Interface:   s.cfg.Interface.Name,
		Network:     s.cfg.Network,
		StartedAt:   start,
		Duration:    summary.Duration,
		Hosts:       summary.Hosts,
		Counters:    summary.Counters,
		Interrupted: reason == stopInterrupted,
		TimedOut:    reason == stopDeadline,
	}
	gologger.Verbose().Msgf("Scan %s done in %s: %d hosts, %d requests, %d replies, %d filtered",
		result.ID, result.Duration, len(result.Hosts), result.RequestsSent, result.RepliesMatched, result.FramesFiltered)
	return result, nil
}
