// Package rpc provides a framework for remote procedure calls in the
// latest-value register system. It acts as the communication layer between
// clients and servers, enabling register operations across network
// boundaries.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP).
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: RPC client implementation of the register.IRegister interface,
//     allowing applications to interact with remote registers transparently.
//
//   - server: RPC server components that handle incoming requests, including
//     the adapter for register operations and per-operation metrics.
package rpc
