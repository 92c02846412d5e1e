package scanner

import (
	"context"
	"sync"
	"sync/atomic"
)

// Interrupt is a one-shot cancellation signal shared by the sender and the
// receiver. Triggering it makes a running scan finalize with the hosts that
// answered so far.
type Interrupt struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	fired  atomic.Bool
}

// NewInterrupt returns an untriggered interrupt. It also fires when parent
// is cancelled.
func NewInterrupt(parent context.Context) *Interrupt {
	ctx, cancel := context.WithCancel(parent)
	return &Interrupt{ctx: ctx, cancel: cancel}
}

// Trigger sets the signal. It returns true only for the call that set it.
func (i *Interrupt) Trigger() bool {
	set := false
	i.once.Do(func() {
		i.fired.Store(true)
		i.cancel()
		set = true
	})
	return set
}

// Triggered reports whether the signal is set
func (i *Interrupt) Triggered() bool {
	return i.fired.Load() || i.ctx.Err() != nil
}

// Done is closed once the signal is set
func (i *Interrupt) Done() <-chan struct{} {
	return i.ctx.Done()
}

// Context returns a context cancelled by the signal
func (i *Interrupt) Context() context.Context {
	return i.ctx
}
