package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Shared socket configuration
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings shared by client and server
// transports. Zero values mean "leave the OS default".
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific tuning options (ignored by other transports).
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

type ServerShardType string

const (
	ShardTypeLocalRegister ServerShardType = "local register"
)

// ServerShard describes one register shard served by an RPC server.
type ServerShard struct {
	// ShardID is the ID of the shard
	ShardID uint64
	// Type selects the register implementation backing the shard
	Type ServerShardType
}

// ServerTransportConfig holds the network settings of the server.
type ServerTransportConfig struct {
	// Endpoint is the address the server listens on (host:port for tcp/http,
	// a socket path for unix)
	Endpoint string
	// MaxWorkersPerConn limits concurrent request workers per connection
	MaxWorkersPerConn int

	SocketConf
	TCPConf
}

// ServerConfig holds all configuration parameters for an RPC server.
type ServerConfig struct {
	// Shards served by this node
	Shards []ServerShard

	// ReclaimIntervalMS is the time between background reclamation sweeps
	// in milliseconds (0 = default)
	ReclaimIntervalMS int

	// Timeout in seconds for reads/writes on a connection
	TimeoutSecond int64

	// Transport settings
	Transport ServerTransportConfig

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Workers Per Conn", strconv.Itoa(c.Transport.MaxWorkersPerConn))

	// Reclamation
	addSection("Reclamation")
	if c.ReclaimIntervalMS > 0 {
		addField("Sweep Interval", fmt.Sprintf("%d ms", c.ReclaimIntervalMS))
	} else {
		addField("Sweep Interval", "default")
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	// Shards
	addSection("Shards")
	for _, shard := range c.Shards {
		addField(strconv.FormatUint(shard.ShardID, 10), string(shard.Type))
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the network settings of the client.
type ClientTransportConfig struct {
	// Endpoints is the list of server addresses. Transports that support load
	// balancing distribute requests over all of them round-robin.
	Endpoints []string
	// RetryCount is how many times a failed request is retried
	RetryCount int
	// ConnectionsPerEndpoint is the number of parallel connections opened to
	// each endpoint (for transports that support this feature)
	ConnectionsPerEndpoint int

	SocketConf
	TCPConf
}

// ClientConfig holds all configuration parameters for an RPC client.
type ClientConfig struct {
	TimeoutSecond int
	Transport     ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.Transport.ConnectionsPerEndpoint)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
