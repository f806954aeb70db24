package serverstate

import (
	"sync"
	"sync/atomic"
)

// State is the bridge status snapshot. All fields are stored together so
// readers always observe a consistent view.
type State struct {
	Status    string `json:"status"`
	Surfaces  int    `json:"surfaces"`
	LastEvent string `json:"last_event,omitempty"`
}

// Store defines how the bridge state is persisted. Implementations may keep
// state in memory or in an external service such as Redis.
type Store interface {
	Load() State
	Store(State)
}

// active is the currently configured Store. It defaults to an in-memory
// implementation but can be swapped for other strategies.
var active Store = NewMemoryStore()

// mu serializes the read-modify-write helpers below so concurrent updates
// cannot lose each other's writes.
var mu sync.Mutex

// UseStore replaces the active Store.
func UseStore(s Store) {
	if s != nil {
		active = s
	}
}

// memoryStore implements Store using an atomic.Value. It is the default
// strategy and is safe for concurrent use within a single process.
type memoryStore struct {
	v atomic.Value
}

// NewMemoryStore returns a memory-backed Store initialized to "not_ready".
func NewMemoryStore() *memoryStore {
	ms := &memoryStore{}
	ms.v.Store(State{Status: "not_ready"})
	return ms
}

func (m *memoryStore) Load() State {
	if st, ok := m.v.Load().(State); ok {
		return st
	}
	return State{Status: "unknown"}
}

func (m *memoryStore) Store(s State) {
	m.v.Store(s)
}

// SetStatus updates the bridge status string.
func SetStatus(status string) {
	mu.Lock()
	defer mu.Unlock()
	st := active.Load()
	st.Status = status
	active.Store(st)
}

// GetStatus returns the current bridge status.
func GetStatus() string {
	return active.Load().Status
}

// AddSurfaces adjusts the connected-surface count by delta, floored at zero.
func AddSurfaces(delta int) {
	mu.Lock()
	defer mu.Unlock()
	st := active.Load()
	st.Surfaces += delta
	if st.Surfaces < 0 {
		st.Surfaces = 0
	}
	active.Store(st)
}

// SetLastEvent records the name of the most recent inbound event.
func SetLastEvent(name string) {
	mu.Lock()
	defer mu.Unlock()
	st := active.Load()
	st.LastEvent = name
	active.Store(st)
}

// Snapshot returns the full current state.
func Snapshot() State {
	return active.Load()
}
