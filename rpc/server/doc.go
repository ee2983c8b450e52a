// Package server implements the RPC server for the value cell store system.
// It provides adapters for handling RPC requests against register services,
// along with the core server implementation that manages shards and request routing.
//
// The package focuses on:
//   - Server-side RPC request handling for register operations
//   - Adapter pattern to decouple application logic from RPC mechanisms
//   - Flexible shard configuration
//   - Dynamic creation of registers based on shard configuration
//   - Per-operation metrics suitable for Prometheus scraping
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server adapters,
//     with the Handle method that processes incoming requests against a
//     register.IRegister.
//
//   - NewIRegisterServerAdapter: Factory function creating an adapter for register
//     operations, translating RPC requests to register.IRegister method calls.
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Shards: []common.ServerShard{
//	    {ShardID: 100, Type: common.ShardTypeLocalRegister},
//	  },
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//	config.Transport.Endpoint = "0.0.0.0:8080"
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests
//	across multiple connections. Each request is processed independently.
//	The Serve method is not thread-safe and should be called only once.
package server
