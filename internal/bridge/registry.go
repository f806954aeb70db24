package bridge

import (
	"encoding/json"
	"sync"
)

// Callback consumes one event payload. The payload reference is shared by
// every callback in the same dispatch.
type Callback func(args json.RawMessage)

// registry maps each event kind to its ordered callback bucket. Buckets are
// append-only; a single mutex serializes appends and snapshots so dispatch
// order holds even when the host channel delivers from multiple goroutines.
type registry struct {
	mu      sync.Mutex
	buckets [numEventKinds][]Callback
}

func (r *registry) add(k EventKind, cb Callback) {
	r.mu.Lock()
	r.buckets[k] = append(r.buckets[k], cb)
	r.mu.Unlock()
}

// snapshot copies the bucket for k so callbacks run outside the lock and
// callbacks registered mid-dispatch only take effect on the next message.
func (r *registry) snapshot(k EventKind) []Callback {
	r.mu.Lock()
	defer r.mu.Unlock()
	bucket := r.buckets[k]
	out := make([]Callback, len(bucket))
	copy(out, bucket)
	return out
}

func (r *registry) size(k EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buckets[k])
}
