// Package register defines the generic interface for keyed latest-value
// registers.
//
// A register maps keys to their current value, where each value is backed by
// an append-only cell (see the cell package): writes publish a new latest
// value, reads observe the newest value, and obsolete history is reclaimed in
// the background. Unlike a key-value store, a register never forgets a key on
// overwrite and never exposes historical values - only the latest value of a
// key is observable.
//
// The package follows the same layering as the rest of the library: the
// interface and error types live here, concrete implementations live in
// subpackages (lregister for the local in-memory implementation, rpc/client
// for the remote one), and a shared conformance test suite lives in the
// testing subpackage.
//
// All write operations return only an error (nil on success), while read
// operations return the requested data along with an error.
package register
