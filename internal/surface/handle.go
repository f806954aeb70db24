package surface

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gaspardpetit/vizbridge/internal/channel"
	"github.com/gaspardpetit/vizbridge/internal/logx"
	"github.com/gaspardpetit/vizbridge/internal/wire"
)

// Handle is the host-side handle to one embedded surface. It exists from the
// moment the surface is mounted; its outbound channel becomes available only
// once the remote side attaches. Inbound subscriptions go through a relay so
// they survive attach/detach cycles of the transport underneath.
type Handle struct {
	id        string
	url       string
	container *Node
	relay     *channel.Relay

	mu   sync.Mutex
	post channel.Duplex
	sub  *channel.Subscription
}

// Factory creates embedded surfaces and mounts them into the host layout.
type Factory interface {
	Create(url string, container *Node) (*Handle, error)
}

type embedFactory struct{}

// NewFactory returns the default surface factory.
func NewFactory() Factory { return embedFactory{} }

func (embedFactory) Create(url string, container *Node) (*Handle, error) {
	h := &Handle{
		id:        uuid.NewString(),
		url:       url,
		container: container,
		relay:     channel.NewRelay(),
	}
	container.mount(h)
	return h, nil
}

func (h *Handle) ID() string       { return h.id }
func (h *Handle) URL() string      { return h.url }
func (h *Handle) Container() *Node { return h.container }

// Subscribe attaches a handler for envelopes arriving from the surface.
func (h *Handle) Subscribe(fn func(wire.Envelope)) *channel.Subscription {
	return h.relay.Subscribe(fn)
}

// Attach binds a live transport to the handle and returns the transport it
// replaced, if any, so the caller can shut the old one down.
func (h *Handle) Attach(d channel.Duplex) channel.Duplex {
	h.mu.Lock()
	prev := h.post
	if h.sub != nil {
		h.sub.Close()
	}
	h.post = d
	h.sub = d.Subscribe(func(env wire.Envelope) {
		_ = h.relay.Post(context.Background(), env)
	})
	h.mu.Unlock()
	logx.Log.Debug().Str("surface_id", h.id).Msg("surface attached")
	return prev
}

// Detach drops the current transport. Pending subscriptions stay registered.
func (h *Handle) Detach() {
	h.mu.Lock()
	if h.sub != nil {
		h.sub.Close()
		h.sub = nil
	}
	h.post = nil
	h.mu.Unlock()
	logx.Log.Debug().Str("surface_id", h.id).Msg("surface detached")
}

// DetachIf drops the transport only when d is still the one attached, and
// reports whether it did. A stale connection closing after a replacement
// attached must not tear down its successor.
func (h *Handle) DetachIf(d channel.Duplex) bool {
	h.mu.Lock()
	if h.post != d {
		h.mu.Unlock()
		return false
	}
	if h.sub != nil {
		h.sub.Close()
		h.sub = nil
	}
	h.post = nil
	h.mu.Unlock()
	logx.Log.Debug().Str("surface_id", h.id).Msg("surface detached")
	return true
}

// Channel returns the surface's inbound channel, or false when no transport
// is attached.
func (h *Handle) Channel() (channel.Poster, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.post, h.post != nil
}

// Attached reports whether a transport is currently bound.
func (h *Handle) Attached() bool {
	_, ok := h.Channel()
	return ok
}

// Table tracks live surface handles by ID so transports can find their
// handle when a remote surface connects.
type Table struct {
	mu      sync.RWMutex
	handles map[string]*Handle
}

func NewTable() *Table {
	return &Table{handles: make(map[string]*Handle)}
}

func (t *Table) Add(h *Handle) {
	t.mu.Lock()
	t.handles[h.ID()] = h
	t.mu.Unlock()
}

func (t *Table) Remove(id string) {
	t.mu.Lock()
	delete(t.handles, id)
	t.mu.Unlock()
}

func (t *Table) Get(id string) (*Handle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	h, ok := t.handles[id]
	return h, ok
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.handles)
}
