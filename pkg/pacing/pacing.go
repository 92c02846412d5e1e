// Package pacing spaces outbound requests either by a fixed interval or by a
// delay derived from a bandwidth limit.
package pacing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrExclusive is returned when both an interval and a bandwidth are set
	ErrExclusive = errors.New("interval and bandwidth are mutually exclusive")
	// ErrUnset is returned when neither an interval nor a bandwidth is set
	ErrUnset = errors.New("either an interval or a bandwidth is required")
)

// Pacer computes the delay between two consecutive transmissions.
type Pacer struct {
	mu        sync.Mutex
	interval  time.Duration
	bandwidth uint64 // bits per second
	frameSize int    // bytes
	delay     time.Duration
}

// New creates a pacer. Exactly one of interval and bandwidth (bits per
// second) must be non-zero; frameSize is the size in bytes of one request
// and is only used in bandwidth mode.
func New(interval time.Duration, bandwidth uint64, frameSize int) (*Pacer, error) {
	if interval > 0 && bandwidth > 0 {
		return nil, ErrExclusive
	}
	if interval <= 0 && bandwidth == 0 {
		return nil, ErrUnset
	}
	if bandwidth > 0 && frameSize <= 0 {
		return nil, fmt.Errorf("invalid frame size %d", frameSize)
	}

	p := &Pacer{interval: interval, bandwidth: bandwidth, frameSize: frameSize}
	p.recompute()
	return p, nil
}

// SetFrameSize updates the request size and recomputes the bandwidth delay.
func (p *Pacer) SetFrameSize(frameSize int) {
	if frameSize <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frameSize = frameSize
	p.recompute()
}

func (p *Pacer) recompute() {
	if p.bandwidth == 0 {
		p.delay = p.interval
		return
	}
	bits := uint64(p.frameSize) * 8
	p.delay = time.Duration(bits * uint64(time.Second) / p.bandwidth)
}

// Delay returns the current per-request delay.
func (p *Pacer) Delay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delay
}

// BandwidthMode reports whether the delay is derived from a bandwidth limit.
func (p *Pacer) BandwidthMode() bool {
	return p.bandwidth > 0
}

// Bandwidth returns the effective bandwidth in bits per second. In interval
// mode this is derived from the interval and frame size.
func (p *Pacer) Bandwidth() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bandwidth > 0 {
		return p.bandwidth
	}
	if p.delay <= 0 {
		return 0
	}
	return uint64(p.frameSize) * 8 * uint64(time.Second) / uint64(p.delay)
}

// Wait blocks for one delay. It returns ctx.Err() if the context is done
// first.
func (p *Pacer) Wait(ctx context.Context) error {
	delay := p.Delay()
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Estimate returns the expected scan duration for the given number of
// requests: targets*delay + timeout. It is informational only.
func (p *Pacer) Estimate(targets int, timeout time.Duration) time.Duration {
	return time.Duration(targets)*p.Delay() + timeout
}

// FormatDuration renders d with a single coarse unit (ms, s, m or h).
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int64(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int64(d/time.Minute))
	}
	return fmt.Sprintf("%dh", int64(d/time.Hour))
}
