// Package cmd implements the command-line interface for the vcell
// value cell store. It provides a hierarchical command structure with operations
// for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - reg: Commands for register operations (get, set, swap, etc.)
//   - serve: Commands for starting and configuring the vcell server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See vcell -help for a list of all commands.
package cmd
