package wire

import "encoding/json"

// Envelope is the message unit exchanged with an embedded surface in either
// direction. Name identifies the protocol event; Args is opaque to the
// transport and is interpreted only by the registered handlers.
type Envelope struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Decode parses raw channel data into an Envelope.
func Decode(data []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(data, &env)
	return env, err
}

// Encode serializes an Envelope for the channel.
func Encode(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}
