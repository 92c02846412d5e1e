package scanner

import (
	"net"
	"net/netip"
	"sort"
	"sync"
	"time"
)

// Table is the single owner of the scan targets. The sender and the receiver
// mutate it concurrently through its methods only; each method holds the
// lock for its own duration and never across I/O.
type Table struct {
	mu      sync.Mutex
	targets map[netip.Addr]*Target
	order   []netip.Addr
	started time.Time

	counters Counters
}

// Summary is the finalized content of a table
type Summary struct {
	Hosts    []Host
	Counters Counters
	Duration time.Duration
}

// NewTable creates a table holding one Pending target per address, kept in
// the given order. Duplicate addresses are ignored.
func NewTable(ips []netip.Addr, started time.Time) *Table {
	t := &Table{
		targets: make(map[netip.Addr]*Target, len(ips)),
		order:   make([]netip.Addr, 0, len(ips)),
		started: started,
	}
	for _, ip := range ips {
		if _, ok := t.targets[ip]; ok {
			continue
		}
		t.targets[ip] = &Target{IP: ip, State: Pending}
		t.order = append(t.order, ip)
	}
	return t
}

// Len returns the number of targets
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}

// Order returns the targets in probing order
func (t *Table) Order() []netip.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]netip.Addr(nil), t.order...)
}

// Get returns a copy of the target for ip
func (t *Table) Get(ip netip.Addr) (Target, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	target, ok := t.targets[ip]
	if !ok {
		return Target{}, false
	}
	return *target, true
}

// MarkSent moves a Pending target to AwaitingReply and accounts one request.
// It returns false, and accounts nothing, for any other state: the caller
// must not transmit in that case.
func (t *Table) MarkSent(ip netip.Addr, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	target, ok := t.targets[ip]
	if !ok || target.State != Pending {
		return false
	}
	target.State = AwaitingReply
	target.Attempts++
	target.LastSent = now
	t.counters.RequestsSent++
	return true
}

// Requeue moves an AwaitingReply target back to Pending for a retry
func (t *Table) Requeue(ip netip.Addr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	target, ok := t.targets[ip]
	if !ok || target.State != AwaitingReply {
		return false
	}
	target.State = Pending
	return true
}

// MarkAnswered records a reply from ip received at the given time. Only the
// first reply of a probed target is recorded; later ones count as matched
// without changing it. Replies from unknown, never probed or exhausted
// targets count as filtered.
func (t *Table) MarkAnswered(ip netip.Addr, mac net.HardwareAddr, at time.Time) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	target, ok := t.targets[ip]
	if !ok || target.Attempts == 0 {
		t.counters.FramesFiltered++
		return OutcomeUnknown
	}
	switch target.State {
	case Answered:
		t.counters.RepliesMatched++
		return OutcomeDuplicate
	case Exhausted:
		t.counters.FramesFiltered++
		return OutcomeLate
	}

	target.State = Answered
	target.MAC = append(net.HardwareAddr(nil), mac...)
	if latency := at.Sub(target.LastSent); latency > 0 {
		target.Latency = latency
	}
	t.counters.RepliesMatched++
	return OutcomeAnswered
}

// MarkExhausted moves a non-terminal target to Exhausted
func (t *Table) MarkExhausted(ip netip.Addr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	target, ok := t.targets[ip]
	if !ok || target.State.Terminal() {
		return false
	}
	target.State = Exhausted
	return true
}

// ExhaustRemaining marks every non-terminal target Exhausted and returns how
// many were changed.
func (t *Table) ExhaustRemaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exhaustRemaining()
}

func (t *Table) exhaustRemaining() int {
	n := 0
	for _, target := range t.targets {
		if !target.State.Terminal() {
			target.State = Exhausted
			n++
		}
	}
	return n
}

// Filtered accounts one frame that did not match the scan
func (t *Table) Filtered() {
	t.mu.Lock()
	t.counters.FramesFiltered++
	t.mu.Unlock()
}

// Sweep runs the retry schedule at now. AwaitingReply targets with budget
// left whose last request is older than retryDelay are requeued and
// returned as due, in probing order; targets whose budget is spent are
// exhausted once their reply window elapsed. Pending targets are always due.
// next is the earliest time a further sweep can change anything, zero when
// every target is terminal.
func (t *Table) Sweep(now time.Time, retries int, retryDelay, timeout time.Duration) (due []netip.Addr, next time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	earliest := func(at time.Time) {
		if next.IsZero() || at.Before(next) {
			next = at
		}
	}
	for _, ip := range t.order {
		target := t.targets[ip]
		switch target.State {
		case Pending:
			due = append(due, ip)
		case AwaitingReply:
			if target.Attempts < retries {
				at := target.LastSent.Add(retryDelay)
				if !now.Before(at) {
					target.State = Pending
					due = append(due, ip)
					continue
				}
				earliest(at)
				continue
			}
			at := target.LastSent.Add(timeout)
			if !now.Before(at) {
				target.State = Exhausted
				continue
			}
			earliest(at)
		}
	}
	return due, next
}

// Done reports whether every target is terminal
func (t *Table) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, target := range t.targets {
		if !target.State.Terminal() {
			return false
		}
	}
	return true
}

// Counters returns a snapshot of the statistics
func (t *Table) Counters() Counters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counters
}

// Finalize exhausts every remaining target and returns the answered hosts
// in ascending address order.
func (t *Table) Finalize(now time.Time) Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exhaustRemaining()

	hosts := make([]Host, 0)
	for _, target := range t.targets {
		if target.State != Answered {
			continue
		}
		hosts = append(hosts, Host{
			IP:      target.IP,
			MAC:     append(net.HardwareAddr(nil), target.MAC...),
			Latency: target.Latency,
		})
	}
	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].IP.Less(hosts[j].IP)
	})
	return Summary{
		Hosts:    hosts,
		Counters: t.counters,
		Duration: now.Sub(t.started),
	}
}
