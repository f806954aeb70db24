package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"github.com/gaspardpetit/vizbridge/internal/channel"
	"github.com/gaspardpetit/vizbridge/internal/config"
	"github.com/gaspardpetit/vizbridge/internal/logx"
	"github.com/gaspardpetit/vizbridge/internal/metrics"
	"github.com/gaspardpetit/vizbridge/internal/serverstate"
	"github.com/gaspardpetit/vizbridge/internal/surface"
	"github.com/gaspardpetit/vizbridge/internal/wire"
)

// registerArgs is the payload of the register envelope a surface must send
// as its first message after connecting.
type registerArgs struct {
	SurfaceID string `json:"surfaceId"`
	Key       string `json:"key"`
}

// SurfaceWSHandler accepts surface websocket connections, validates the
// shared key, and attaches the transport to the matching surface handle.
// The handler blocks until the connection goes away.
func SurfaceWSHandler(cfg config.ServerConfig, table *surface.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: cfg.AllowedOrigins})
		if err != nil {
			return
		}
		ctx := r.Context()

		_, data, err := c.Read(ctx)
		if err != nil {
			return
		}
		env, err := wire.Decode(data)
		if err != nil || env.Name != "register" {
			_ = c.Close(websocket.StatusPolicyViolation, "expected register")
			return
		}
		var reg registerArgs
		if err := json.Unmarshal(env.Args, &reg); err != nil {
			_ = c.Close(websocket.StatusPolicyViolation, "invalid register args")
			return
		}
		if cfg.SurfaceKey != "" && reg.Key != cfg.SurfaceKey {
			_ = c.Close(websocket.StatusPolicyViolation, "unauthorized")
			return
		}
		h, ok := table.Get(reg.SurfaceID)
		if !ok {
			_ = c.Close(websocket.StatusPolicyViolation, "unknown surface")
			return
		}

		done := make(chan struct{})
		var ch *channel.WS
		ch = channel.NewWS(context.Background(), c, func() {
			h.DetachIf(ch)
			metrics.SurfaceConnected(false)
			serverstate.AddSurfaces(-1)
			close(done)
		})
		// A re-register replaces the transport; shut the old connection down
		// so at most one is live per surface.
		if prev, ok := h.Attach(ch).(*channel.WS); ok {
			prev.Close()
		}
		ch.Start()
		metrics.SurfaceConnected(true)
		serverstate.AddSurfaces(1)
		logx.Log.Info().Str("surface_id", reg.SurfaceID).Str("remote_addr", r.RemoteAddr).Msg("surface connected")

		select {
		case <-done:
		case <-ctx.Done():
			ch.Close()
			<-done
		}
		logx.Log.Info().Str("surface_id", reg.SurfaceID).Msg("surface disconnected")
	}
}
