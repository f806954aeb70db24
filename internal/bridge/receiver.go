package bridge

import (
	"github.com/gaspardpetit/vizbridge/internal/channel"
	"github.com/gaspardpetit/vizbridge/internal/logx"
	"github.com/gaspardpetit/vizbridge/internal/metrics"
	"github.com/gaspardpetit/vizbridge/internal/wire"
)

// installReceiver subscribes the frame's dispatcher to the inbound channel.
// Envelopes whose name is missing or maps to no known kind are dropped
// without error; nothing may panic past the listener boundary.
func installReceiver(bus channel.Listener, f *Frame) *channel.Subscription {
	return bus.Subscribe(func(env wire.Envelope) {
		defer func() {
			if r := recover(); r != nil {
				logx.Log.Error().Interface("panic", r).Str("name", env.Name).Msg("receiver panic")
			}
		}()
		kind, ok := KindForName(env.Name)
		if !ok {
			metrics.RecordMessage("unknown", false)
			logx.Log.Debug().Str("name", env.Name).Msg("ignore unmatched message")
			return
		}
		metrics.RecordMessage(kind.String(), true)
		f.dispatch(kind, env.Args)
	})
}
