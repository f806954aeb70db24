package channel

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/gaspardpetit/vizbridge/internal/logx"
	"github.com/gaspardpetit/vizbridge/internal/wire"
)

const (
	sendQueueSize = 32
	writeTimeout  = 5 * time.Second
	pingInterval  = 30 * time.Second
)

// WS adapts a websocket connection into a duplex envelope channel. Outbound
// envelopes go through a bounded queue drained by a write loop; inbound
// frames are decoded and fanned out to subscribers from the read loop.
type WS struct {
	conn    *websocket.Conn
	send    chan wire.Envelope
	subs    fanout
	ctx     context.Context
	closed  atomic.Bool
	started atomic.Bool
	cancel  context.CancelFunc
	onClose func()
}

// NewWS wraps an accepted or dialed connection. The read loop only starts on
// Start, so callers can attach subscribers first without losing early frames.
// onClose, if non-nil, runs once when the connection goes away.
func NewWS(ctx context.Context, conn *websocket.Conn, onClose func()) *WS {
	ctx, cancel := context.WithCancel(ctx)
	return &WS{
		conn:    conn,
		send:    make(chan wire.Envelope, sendQueueSize),
		ctx:     ctx,
		cancel:  cancel,
		onClose: onClose,
	}
}

// Start launches the channel's read, write, and ping loops. Idempotent.
func (w *WS) Start() {
	if w.started.Swap(true) {
		return
	}
	go w.readLoop(w.ctx)
	go w.writeLoop(w.ctx)
	go w.pingLoop(w.ctx)
}

// Dial connects to url and returns the wrapped channel, not yet started.
func Dial(ctx context.Context, url string, onClose func()) (*WS, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return NewWS(ctx, conn, onClose), nil
}

func (w *WS) Post(_ context.Context, env wire.Envelope) error {
	if w.closed.Load() {
		return ErrClosed
	}
	select {
	case w.send <- env:
		return nil
	default:
		return ErrBackpressure
	}
}

func (w *WS) Subscribe(fn func(wire.Envelope)) *Subscription {
	return w.subs.subscribe(fn)
}

// Close tears the connection down. Idempotent.
func (w *WS) Close() {
	if w.closed.Swap(true) {
		return
	}
	w.cancel()
	_ = w.conn.Close(websocket.StatusNormalClosure, "closing")
}

func (w *WS) readLoop(ctx context.Context) {
	defer func() {
		if w.onClose != nil {
			w.onClose()
		}
		w.Close()
	}()
	for {
		_, data, err := w.conn.Read(ctx)
		if err != nil {
			return
		}
		env, err := wire.Decode(data)
		if err != nil {
			logx.Log.Debug().Err(err).Msg("drop undecodable frame")
			continue
		}
		w.subs.deliver(env)
	}
}

func (w *WS) writeLoop(ctx context.Context) {
	for {
		select {
		case env := <-w.send:
			data, err := wire.Encode(env)
			if err != nil {
				continue
			}
			wctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			_ = w.conn.Write(wctx, websocket.MessageText, data)
			cancel()
		case <-ctx.Done():
			return
		}
	}
}

func (w *WS) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = w.conn.Ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}
