package surface

import "sync"

// NodeKind distinguishes mountable elements from other layout node types.
type NodeKind int

const (
	NodeElement NodeKind = iota
	NodeText
)

// Node is one slot in the host's layout tree. Only element nodes can hold
// an embedded surface.
type Node struct {
	ID   string
	Kind NodeKind

	mu      sync.Mutex
	mounted []*Handle
}

// Mountable reports whether a surface may be mounted into the node.
func (n *Node) Mountable() bool {
	return n != nil && n.Kind == NodeElement
}

func (n *Node) mount(h *Handle) {
	n.mu.Lock()
	n.mounted = append(n.mounted, h)
	n.mu.Unlock()
}

// Mounted returns the surfaces currently mounted into the node.
func (n *Node) Mounted() []*Handle {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Handle, len(n.mounted))
	copy(out, n.mounted)
	return out
}

// Registry resolves container keys to layout nodes. It is the host-side
// lookup the bridge consults when constructed with a string container.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]*Node
}

func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*Node)}
}

func (r *Registry) Add(key string, n *Node) {
	r.mu.Lock()
	r.nodes[key] = n
	r.mu.Unlock()
}

func (r *Registry) Remove(key string) {
	r.mu.Lock()
	delete(r.nodes, key)
	r.mu.Unlock()
}

// Lookup returns the node registered under key.
func (r *Registry) Lookup(key string) (*Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[key]
	return n, ok
}
