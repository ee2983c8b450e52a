// Package common provides core data structures and utilities shared across
// the register RPC system. It defines fundamental types, configuration
// structures, and protocol elements used by the other rpc packages.
//
// The package focuses on:
//   - Message protocol definition for client/server communication
//   - Configuration structures for client and server components
//   - A leveled logging implementation with per-component loggers
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication, with a flexible
//     structure that adapts to different operation types. Includes factory
//     methods for creating the various request and response messages.
//
//   - MessageType: Enumeration defining all supported operation types in the
//     system, categorized into register operations and control messages.
//
//   - ServerConfig: Configuration for server nodes, including shard layout,
//     transport settings, reclamation interval and log level.
//
//   - ClientConfig: Configuration for client components, controlling
//     connection parameters, timeouts, and retry behavior.
//
//   - Logger: Leveled logging with consistent formatting across the
//     application, addressed by component name via GetLogger.
package common
