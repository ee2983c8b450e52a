// Package client implements RPC clients for the value cell store system.
// It provides an implementation of the register.IRegister interface
// that communicates with remote servers via RPC.
//
// The package focuses on:
//   - Transparent RPC access to register implementations
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Key Components:
//
//   - NewRPCRegister: Factory function that creates a client implementing the
//     register.IRegister interface. This client forwards all operations to remote
//     servers via the configured transport layer.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{
//	  TimeoutSecond: 5,
//	}
//	config.Transport.Endpoints = []string{"localhost:5000"}
//	config.Transport.RetryCount = 3
//	config.Transport.ConnectionsPerEndpoint = 1
//
//	// Create a serializer
//	serializer := serializer.NewBinarySerializer()
//
//	// Create register client
//	reg, _ := client.NewRPCRegister(1, config, tcp.NewTCPClientTransport(), serializer)
//
//	// Use the register
//	reg.Set("mykey", []byte("myvalue"))
//	value, exists, _ := reg.Get("mykey")
//	prev, loaded, _ := reg.Swap("mykey", []byte("newvalue"))
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - For small messages, a single connection per endpoint is often more efficient due to
//     reduced connection overhead.
//
//   - The choice of serializer significantly affects performance. The binary serializer
//     provides the best performance and smallest payload size.
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
