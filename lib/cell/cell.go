package cell

import (
	"sync"
	"sync/atomic"
)

// --------------------------------------------------------------------------
// Node
// --------------------------------------------------------------------------

// Node is a single entry of the retained history chain. The value is set at
// allocation time and never mutated afterwards; the next link is written
// exactly once, by the publisher that links a newer node after this one.
type Node[V any] struct {
	value V
	next  atomic.Pointer[Node[V]]
}

// Value returns the value stored in the node. Values are immutable once the
// node is published, so this is safe to call from any goroutine.
func (n *Node[V]) Value() V {
	return n.value
}

// reset clears the node so it can be handed back to an allocator. The next
// link must be severed, otherwise a pooled node would resurrect a stale
// chain suffix on reuse.
func (n *Node[V]) reset() {
	var zero V
	n.value = zero
	n.next.Store(nil)
}

// --------------------------------------------------------------------------
// Cell
// --------------------------------------------------------------------------

// Cell is a concurrent append-only latest-value cell (see package docu).
//
// The chain head -> ... -> tail is always non-empty. head is only ever
// advanced forward by ReclaimOldest, tail is only ever advanced forward by
// Publish/Swap, and next links are single-assignment.
type Cell[V any] struct {
	head  atomic.Pointer[Node[V]]
	tail  atomic.Pointer[Node[V]]
	pause atomic.Int64 // count of in-flight readers, reclamation is suppressed while non-zero
	alloc Allocator[V]
}

// Options configures a Cell during construction.
type Options[V any] struct {
	// Allocator used for node allocation and reclamation (nil = pooled default)
	Allocator Allocator[V]
}

// New creates a new Cell seeded with a sentinel node holding the given
// initial value. The sentinel is what Latest returns before the first
// Publish, and what the first Swap hands back as the previous value.
//
// Thread-safety: This function is not thread-safe and should only be called
// once during initialization.
func New[V any](sentinel V, opts *Options[V]) *Cell[V] {
	alloc := Allocator[V](nil)
	if opts != nil {
		alloc = opts.Allocator
	}
	if alloc == nil {
		alloc = NewPooledAllocator[V]()
	}

	c := &Cell[V]{alloc: alloc}

	node := alloc.Get()
	node.value = sentinel
	node.next.Store(nil)

	// head == tail == sentinel
	c.head.Store(node)
	c.tail.Store(node)

	return c
}

// --------------------------------------------------------------------------
// Publish Path
// --------------------------------------------------------------------------

// Publish appends a new latest value.
//
// The new node is made visible in two steps: an atomic exchange on the tail,
// then the write of the previous tail's next link. Between the two steps
// other goroutines observe the old head chain ending in a node without a
// successor; ReclaimOldest treats that as "nothing to reclaim yet".
//
// Thread-safety: This method is thread-safe and can be called concurrently.
// With multiple concurrent publishers the chain order reflects exchange
// order, not call order.
func (c *Cell[V]) Publish(value V) {
	node := c.alloc.Get()
	node.value = value
	// sever any link the allocator may have left on a recycled node, a stale
	// suffix behind the new tail would be walked by Retained and Close
	node.next.Store(nil)

	old := c.tail.Swap(node)
	if old == nil {
		// The chain is never empty while the Cell is alive. A nil tail means
		// the shared state is corrupted (or the Cell was closed), recovery is
		// not possible.
		panic("cell: tail is nil during publish")
	}

	old.next.Store(node)
}

// Swap appends a new latest value and returns the value that was current
// before the call. The previous value is captured before the next link is
// written; values are immutable after construction, so the read is safe
// regardless of link-write ordering.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *Cell[V]) Swap(value V) V {
	node := c.alloc.Get()
	node.value = value
	node.next.Store(nil)

	old := c.tail.Swap(node)
	if old == nil {
		panic("cell: tail is nil during swap")
	}

	previous := old.value
	old.next.Store(node)

	return previous
}

// --------------------------------------------------------------------------
// Read Path
// --------------------------------------------------------------------------

// Latest returns the value that was current at some point during the call.
//
// The reader guard (pause counter) is acquired for the duration of the read
// and released on every exit path. Dereferencing the tail is safe without the
// guard since the tail node is never reclaimed; the guard keeps reclamation
// of older nodes paused while a caller may still be inspecting the chain.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (c *Cell[V]) Latest() V {
	c.pause.Add(1)
	defer c.pause.Add(-1)

	latest := c.tail.Load()
	if latest == nil {
		panic("cell: tail is nil during read")
	}

	return latest.value
}

// Guard acquires a reader guard and returns its release function. While at
// least one guard is held reclamation is paused, so a caller may inspect the
// chain (e.g. walk history via Latest and future reads) without nodes being
// retired underneath it.
//
// The release function must be called exactly once, a leaked guard would
// suppress reclamation permanently.
func (c *Cell[V]) Guard() (release func()) {
	c.pause.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { c.pause.Add(-1) })
	}
}

// --------------------------------------------------------------------------
// Reclamation
// --------------------------------------------------------------------------

// ReclaimOldest retires the oldest retained node. It returns true if a node
// was reclaimed and false if nothing could be reclaimed: either a reader
// guard is currently held, or the head has no successor yet (the head is
// also the tail, or a publish is still between its two steps).
//
// Both outcomes are expected steady-state results, not errors.
//
// Thread-safety: ReclaimOldest may run concurrently with Publish, Swap and
// Latest, but calls to ReclaimOldest itself MUST be serialized by the caller
// (e.g. a single Collector). Two racing reclaimers could both advance from
// the same head and double-free a node.
func (c *Cell[V]) ReclaimOldest() bool {
	if c.pause.Load() != 0 {
		return false
	}

	node := c.head.Load()
	if node == nil {
		return false
	}

	next := node.next.Load()
	if next == nil {
		// head == tail, nothing to reclaim
		return false
	}

	c.head.Store(next)

	node.reset()
	c.alloc.Put(node)

	return true
}

// --------------------------------------------------------------------------
// Teardown and Diagnostics
// --------------------------------------------------------------------------

// Close releases every node still retained by the Cell, sentinel and tail
// included. The Cell must not be used afterwards and no operation may be
// in flight when Close is called.
func (c *Cell[V]) Close() {
	node := c.head.Swap(nil)
	c.tail.Store(nil)

	for node != nil {
		next := node.next.Load()
		node.reset()
		c.alloc.Put(node)
		node = next
	}
}

// Retained returns the number of nodes currently held by the chain,
// the tail included. This is O(n) and should only be used for debugging.
func (c *Cell[V]) Retained() int {
	count := 0
	for node := c.head.Load(); node != nil; node = node.next.Load() {
		count++
	}
	return count
}
