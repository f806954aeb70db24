package channel

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/gaspardpetit/vizbridge/internal/wire"
)

// ErrBackpressure indicates the channel's send queue is full.
var ErrBackpressure = errors.New("channel backpressure")

// ErrClosed indicates the channel is no longer usable.
var ErrClosed = errors.New("channel closed")

// Poster delivers envelopes to the remote end of a channel.
type Poster interface {
	Post(ctx context.Context, env wire.Envelope) error
}

// Listener exposes inbound envelopes. Subscribe returns a Subscription the
// caller owns; closing it detaches the handler.
type Listener interface {
	Subscribe(fn func(wire.Envelope)) *Subscription
}

// Subscription represents one attached handler. Close is idempotent.
type Subscription struct {
	once   sync.Once
	cancel func()
}

func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// fanout delivers envelopes to every attached handler. Handlers are invoked
// synchronously in the delivering goroutine.
type fanout struct {
	mu   sync.Mutex
	subs map[string]func(wire.Envelope)
}

func (f *fanout) subscribe(fn func(wire.Envelope)) *Subscription {
	id := uuid.NewString()
	f.mu.Lock()
	if f.subs == nil {
		f.subs = make(map[string]func(wire.Envelope))
	}
	f.subs[id] = fn
	f.mu.Unlock()
	return &Subscription{cancel: func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}}
}

func (f *fanout) deliver(env wire.Envelope) {
	f.mu.Lock()
	fns := make([]func(wire.Envelope), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(env)
	}
}
