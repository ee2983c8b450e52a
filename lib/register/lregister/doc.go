// Package lregister implements a local, in-memory, single-node register based
// on the register.IRegister interface. Each key is backed by its own
// append-only cell (see the cell package), so writes and reads on a key are
// lock-free while a single background collector reclaims obsolete history
// across all keys.
//
// Key Features:
//   - Pure in-memory storage without persistence
//   - Lock-free publish and read per key via cell.Cell
//   - One shared cell.Collector satisfying the single-reclaimer constraint
//   - Concurrent key lookup via xsync.MapOf
//   - Value size tracking via util.SizeHistogram for GetInfo
//
// Implementation Details:
//
//   - Reclamation: Cells require reclamation calls to be serialized. The
//     store owns exactly one Collector and attaches every cell it creates,
//     so there is never more than one reclaimer in the process of sweeping.
//     Dropped keys are detached before their chain is released.
//
//   - Value Ownership: Published values are copied in, so callers may reuse
//     their buffers after Set/Swap returns. Values handed out by Get/Swap
//     are the stored slices and must not be mutated by callers.
//
// Thread Safety:
//
//	All operations are thread-safe, with one documented exception: Drop must
//	not race with other operations on the same key, since releasing a chain
//	while a publish is in flight on it would corrupt the shared state.
//
// Usage Example:
//
//	reg := lregister.NewLocalRegister(nil)
//	defer reg.Close()
//
//	err := reg.Set("sensor:1", reading)
//	value, ok, err := reg.Get("sensor:1")
//
// For access over the network, see the rpc packages, which expose this
// implementation behind the same interface.
package lregister
