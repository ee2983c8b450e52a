package cell

import "sync"

// Allocator abstracts node allocation so callers can pool nodes or account
// for allocations in tests. The Cell allocates one node per publish and
// returns one node per successful reclamation.
type Allocator[V any] interface {
	// Get returns a node ready for use. The Cell overwrites the node's value
	// and severs its next link before linking it into the chain, so
	// implementations may hand out nodes with stale contents.
	Get() *Node[V]
	// Put hands a retired node back to the allocator.
	Put(n *Node[V])
}

// pooledAllocator is the default allocator, backed by a sync.Pool so that
// retired nodes are recycled across publishes.
type pooledAllocator[V any] struct {
	pool *sync.Pool
}

// NewPooledAllocator creates the default sync.Pool backed allocator.
func NewPooledAllocator[V any]() Allocator[V] {
	return &pooledAllocator[V]{
		pool: &sync.Pool{
			New: func() any { return new(Node[V]) },
		},
	}
}

func (a *pooledAllocator[V]) Get() *Node[V] {
	return a.pool.Get().(*Node[V])
}

func (a *pooledAllocator[V]) Put(n *Node[V]) {
	a.pool.Put(n)
}
