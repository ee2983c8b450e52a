// Package cell provides a concurrent append-only latest-value cell.
//
// A Cell holds a single evolving value together with a trailing history of
// older values. Producers publish new values at the tail of an internal
// linked chain, readers observe the newest value without mutating the chain,
// and a reclaimer retires obsolete entries at the head. History is retired,
// never consumed: the Cell is not a queue.
//
// Features and Guarantees:
//
//   - Lock-Free: all coordination is done with atomic operations, no locks
//   - Bounded Steps: Publish, Swap, Latest and ReclaimOldest each perform a
//     fixed number of atomic steps, there are no retry loops
//   - Thread-Safe writes: any number of goroutines may Publish concurrently;
//     concurrent publishers are linearized by the atomic exchange on the tail
//   - Safe reads: the node referenced by the tail is never reclaimed, so
//     reading the latest value is always safe
//   - Single Reclaimer: reclamation calls must be serialized externally (use
//     the Collector); concurrent reclaimers would race on the head
//
// The chain always contains at least one node: the Cell is constructed with a
// sentinel node holding an initial value, and the node currently referenced
// by the tail is never removed. A node becomes eligible for reclamation only
// once a successor has been linked after it.
//
// Node allocation is delegated to an injected Allocator, allowing callers to
// pool nodes or account for allocations in tests. The default allocator is
// backed by a sync.Pool.
//
// Usage Example:
//
//	c := cell.New(0, nil)
//	defer c.Close()
//
//	c.Publish(1)
//	c.Publish(2)
//	latest := c.Latest()        // 2
//	ok := c.ReclaimOldest()     // true, retires the sentinel
//
// For periodic background reclamation see the Collector type.
package cell
