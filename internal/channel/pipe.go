package channel

import (
	"context"
	"sync/atomic"

	"github.com/gaspardpetit/vizbridge/internal/wire"
)

// PipeEnd is one side of an in-process duplex channel. Posting on one end
// invokes the other end's subscribers synchronously, which preserves the
// delivery order of the posting goroutine.
type PipeEnd struct {
	peer   *PipeEnd
	subs   fanout
	closed atomic.Bool
}

// Pipe returns two connected endpoints. It backs local surfaces and tests;
// production surfaces attach over a websocket instead.
func Pipe() (*PipeEnd, *PipeEnd) {
	a := &PipeEnd{}
	b := &PipeEnd{}
	a.peer = b
	b.peer = a
	return a, b
}

func (e *PipeEnd) Post(_ context.Context, env wire.Envelope) error {
	if e.closed.Load() || e.peer.closed.Load() {
		return ErrClosed
	}
	e.peer.subs.deliver(env)
	return nil
}

func (e *PipeEnd) Subscribe(fn func(wire.Envelope)) *Subscription {
	return e.subs.subscribe(fn)
}

// Close marks the endpoint unusable. Subscriptions on the peer stay attached
// but receive nothing further.
func (e *PipeEnd) Close() {
	e.closed.Store(true)
}
