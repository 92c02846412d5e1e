package scanner

import (
	"net"
	"net/netip"
	"time"
)

// State is the position of a target in the scan state machine
type State int

const (
	// Pending targets are waiting for their next request
	Pending State = iota
	// AwaitingReply targets have an outstanding request
	AwaitingReply
	// Answered targets replied; the state is terminal
	Answered
	// Exhausted targets spent their retry budget or the scan ended; the state is terminal
	Exhausted
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case AwaitingReply:
		return "awaiting-reply"
	case Answered:
		return "answered"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// Terminal reports whether no further transition is allowed
func (s State) Terminal() bool {
	return s == Answered || s == Exhausted
}

// Target is one enumerated address and its probing history
type Target struct {
	IP       netip.Addr
	Attempts int
	LastSent time.Time
	State    State

	// set once Answered
	MAC     net.HardwareAddr
	Latency time.Duration
}

// Host is a target that answered the scan
type Host struct {
	IP      netip.Addr       `json:"ip"`
	MAC     net.HardwareAddr `json:"mac"`
	Latency time.Duration    `json:"latency"`
}

// Counters are the monotonic statistics of a scan
type Counters struct {
	RequestsSent   uint64 `json:"requests_sent"`
	RepliesMatched uint64 `json:"replies_matched"`
	FramesFiltered uint64 `json:"frames_filtered"`
}

// Outcome is the effect of a reply on the target table
type Outcome int

const (
	// OutcomeAnswered means the reply was the first one for its target
	OutcomeAnswered Outcome = iota
	// OutcomeDuplicate means the target had already answered
	OutcomeDuplicate
	// OutcomeUnknown means the sender is not a probed target
	OutcomeUnknown
	// OutcomeLate means the target was already exhausted
	OutcomeLate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnswered:
		return "answered"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeUnknown:
		return "unknown"
	case OutcomeLate:
		return "late"
	}
	return "invalid"
}
