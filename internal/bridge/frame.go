package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gaspardpetit/vizbridge/internal/channel"
	"github.com/gaspardpetit/vizbridge/internal/logx"
	"github.com/gaspardpetit/vizbridge/internal/metrics"
	"github.com/gaspardpetit/vizbridge/internal/surface"
	"github.com/gaspardpetit/vizbridge/internal/wire"
)

// Options configure a Frame. Container is either a mount key resolved
// through the host's registry or a *surface.Node supplied directly; URL is
// the address the embedded surface is created against.
type Options struct {
	Container any
	URL       string
}

// Host bundles the external collaborators a Frame consumes: the container
// lookup, the surface factory, and optionally the inbound bus. A nil Bus
// means the frame listens on the surface's own channel; a nil Factory means
// the default one.
type Host struct {
	Mounts  *surface.Registry
	Factory surface.Factory
	Bus     channel.Listener
}

// Frame owns one embedded surface, the container it is mounted in, and the
// callback registry. It is ready as soon as New returns; the remote side of
// the surface may still be loading, and envelopes sent in that window may be
// dropped by the unready remote.
type Frame struct {
	id        string
	handle    *surface.Handle
	container *surface.Node
	reg       registry
	sub       *channel.Subscription
}

// New resolves the container, creates and mounts the embedded surface, and
// installs the message receiver. It fails only on container resolution or
// surface creation; it never waits for the remote side.
func New(opts Options, host Host) (*Frame, error) {
	node, err := resolveContainer(opts.Container, host.Mounts)
	if err != nil {
		return nil, err
	}
	factory := host.Factory
	if factory == nil {
		factory = surface.NewFactory()
	}
	handle, err := factory.Create(opts.URL, node)
	if err != nil {
		return nil, err
	}
	f := &Frame{id: uuid.NewString(), handle: handle, container: node}
	bus := host.Bus
	if bus == nil {
		bus = handle
	}
	f.sub = installReceiver(bus, f)
	logx.Log.Info().Str("frame_id", f.id).Str("surface_id", handle.ID()).Str("url", opts.URL).Msg("bridge frame ready")
	return f, nil
}

func resolveContainer(c any, mounts *surface.Registry) (*surface.Node, error) {
	switch v := c.(type) {
	case *surface.Node:
		if !v.Mountable() {
			return nil, fmt.Errorf("%w: node %q is not an element", ErrContainerResolution, v.ID)
		}
		return v, nil
	case string:
		if mounts == nil {
			return nil, fmt.Errorf("%w: no mount registry to resolve %q", ErrContainerResolution, v)
		}
		n, ok := mounts.Lookup(v)
		if !ok {
			return nil, fmt.Errorf("%w: no node registered for %q", ErrContainerResolution, v)
		}
		if !n.Mountable() {
			return nil, fmt.Errorf("%w: node %q is not an element", ErrContainerResolution, n.ID)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: unsupported container type %T", ErrContainerResolution, c)
	}
}

// ID returns the frame's identifier.
func (f *Frame) ID() string { return f.id }

// Surface returns the owned embedded-surface handle. Read-only exposure for
// host inspection; ownership stays with the frame.
func (f *Frame) Surface() *surface.Handle { return f.handle }

// Close detaches the message receiver so repeated construct/close cycles do
// not leak listeners. The surface and its container are torn down by the
// host's own resource disposal.
func (f *Frame) Close() {
	f.sub.Close()
}

func (f *Frame) register(k EventKind, cb Callback) {
	f.reg.add(k, cb)
}

func (f *Frame) OnTriggerConfigurationUpdate(cb Callback) {
	f.register(TriggerConfigurationUpdate, cb)
}

func (f *Frame) OnUpdateRequirement(cb Callback) {
	f.register(UpdateRequirement, cb)
}

func (f *Frame) OnUpdateRequirements(cb Callback) {
	f.register(UpdateRequirements, cb)
}

func (f *Frame) OnUpdateImageValue(cb Callback) {
	f.register(UpdateImageValue, cb)
}

func (f *Frame) OnUpdateTextValue(cb Callback) {
	f.register(UpdateTextValue, cb)
}

func (f *Frame) OnUpdateLinkedConfigurationCardinality(cb Callback) {
	f.register(UpdateLinkedConfigurationCardinality, cb)
}

func (f *Frame) OnRemoveLinkedConfiguration(cb Callback) {
	f.register(RemoveLinkedConfiguration, cb)
}

func (f *Frame) OnDragStarted(cb Callback) {
	f.register(DragStarted, cb)
}

// dispatch invokes every callback registered for k in registration order,
// each receiving the same payload reference. A panicking callback is
// recovered and logged; the rest of the bucket still runs.
func (f *Frame) dispatch(k EventKind, args json.RawMessage) {
	start := time.Now()
	cbs := f.reg.snapshot(k)
	for _, cb := range cbs {
		invoke(k, cb, args)
	}
	metrics.RecordCallbacks(k.String(), len(cbs))
	metrics.ObserveDispatchDuration(k.String(), time.Since(start))
}

func invoke(k EventKind, cb Callback, args json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			logx.Log.Error().Str("event", k.String()).Interface("panic", r).Msg("callback panic")
		}
	}()
	cb(args)
}

// SendConfigurationUpdated posts the full configuration state to the surface
// with the configurator back-reference stripped.
func (f *Frame) SendConfigurationUpdated(cfg map[string]any) error {
	return f.send(NameConfigurationUpdated, sanitizeConfiguration(cfg))
}

// SendStepChanged posts the active configuration step descriptor verbatim.
func (f *Frame) SendStepChanged(step any) error {
	return f.send(NameStepChanged, step)
}

func (f *Frame) send(name string, payload any) error {
	ch, ok := f.handle.Channel()
	if !ok {
		metrics.RecordSend(name, false)
		return fmt.Errorf("%w: surface %s", ErrNoChannel, f.handle.ID())
	}
	args, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordSend(name, false)
		return fmt.Errorf("encode %s args: %w", name, err)
	}
	if err := ch.Post(context.Background(), wire.Envelope{Name: name, Args: args}); err != nil {
		metrics.RecordSend(name, false)
		return err
	}
	metrics.RecordSend(name, true)
	return nil
}
