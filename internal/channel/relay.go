package channel

import (
	"context"

	"github.com/gaspardpetit/vizbridge/internal/wire"
)

// Duplex is a channel usable in both directions.
type Duplex interface {
	Poster
	Listener
}

// Relay is a standalone in-process Listener: envelopes posted to it are
// delivered synchronously to its subscribers. It survives reattachment of
// the transport underneath, so subscriptions taken before a remote peer
// connects keep working afterwards.
type Relay struct {
	subs fanout
}

func NewRelay() *Relay { return &Relay{} }

func (r *Relay) Post(_ context.Context, env wire.Envelope) error {
	r.subs.deliver(env)
	return nil
}

func (r *Relay) Subscribe(fn func(wire.Envelope)) *Subscription {
	return r.subs.subscribe(fn)
}
