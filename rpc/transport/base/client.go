package base

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/vcell/rpc/common"
	"github.com/ValentinKolb/vcell/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = common.GetLogger("transport/rpc")

// --------------------------------------------------------------------------
// Connector Interface
// --------------------------------------------------------------------------

// IClientConnector supplies the medium-specific part of a client transport.
// The base transport handles multiplexing, retries and reconnects, the
// connector only dials and tunes individual connections.
type IClientConnector interface {
	// Connect dials a single connection to the given endpoint.
	Connect(endpoint string) (net.Conn, error)

	// GetName returns the transport name used in log output (e.g. "tcp").
	GetName() string

	// UpgradeConnection applies medium-specific settings (buffer sizes,
	// keepalive, ...) to a freshly dialed connection.
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// --------------------------------------------------------------------------
// Base Client Transport
// --------------------------------------------------------------------------

// responseResult carries one response (or read error) to a waiting request
type responseResult struct {
	data []byte
	err  error
}

// clientConnection is one multiplexed connection. Many requests may be in
// flight on it at once, the per-request channels in requestChans route each
// response frame back to its caller by request ID.
type clientConnection struct {
	conn         net.Conn
	endpoint     string
	stopCh       chan struct{}
	requestChans *xsync.MapOf[uint64, chan responseResult]
	connMu       sync.Mutex // serializes writes and reconnects on this connection
	parent       *clientTransport
}

// clientTransport is the shared client logic behind the stream transports
// (tcp, unix): a pool of multiplexed connections balanced round robin, with
// retry and jittered exponential backoff on top.
type clientTransport struct {
	connector     IClientConnector
	config        common.ClientConfig
	connections   []*clientConnection
	connectionsMu sync.RWMutex
	nextConnIndex uint64
	nextRequestID uint64
	stopping      bool
}

// NewBaseClientTransport creates a client transport on top of the given
// connector. Connections are established by Connect.
func NewBaseClientTransport(connector IClientConnector) transport.IRPCClientTransport {
	return &clientTransport{
		connector:     connector,
		nextRequestID: 1,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if len(config.Transport.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	t.config = config
	t.stopping = false
	t.closeConnections()

	connectionsPerEP := 1
	if config.Transport.ConnectionsPerEndpoint > 0 {
		connectionsPerEP = config.Transport.ConnectionsPerEndpoint
	}

	t.connections = make([]*clientConnection, 0, len(config.Transport.Endpoints)*connectionsPerEP)

	for _, endpoint := range config.Transport.Endpoints {
		for i := 0; i < connectionsPerEP; i++ {
			clientConn := &clientConnection{
				endpoint:     endpoint,
				stopCh:       make(chan struct{}),
				requestChans: xsync.NewMapOf[uint64, chan responseResult](),
				parent:       t,
			}

			if err := clientConn.reconnect(); err != nil {
				Logger.Warningf("Failed to connect to %s (connection %d/%d): %v", endpoint, i+1, connectionsPerEP, err)
				continue
			}

			t.connectionsMu.Lock()
			t.connections = append(t.connections, clientConn)
			t.connectionsMu.Unlock()

			Logger.Infof("Connected to %s (connection %d/%d)", endpoint, i+1, connectionsPerEP)

			go clientConn.readResponses()
		}
	}

	// partial connectivity is fine, total failure is not
	if len(t.connections) == 0 {
		return fmt.Errorf("failed to connect to any endpoint")
	}

	Logger.Infof("Connected to %d out of %d connections to %d endpoints using %s transport",
		len(t.connections), len(config.Transport.Endpoints)*connectionsPerEP, len(config.Transport.Endpoints), t.connector.GetName())

	return nil
}

func (t *clientTransport) Send(shardId uint64, req []byte) (resp []byte, err error) {
	// the request ID ties the response frame back to this call, it must be
	// unique across all in-flight requests of the transport
	requestID := atomic.AddUint64(&t.nextRequestID, 1)

	send := func(connection *clientConnection) ([]byte, error) {
		if connection.conn == nil {
			return nil, fmt.Errorf("connection is closed")
		}

		respCh := make(chan responseResult, 1)
		connection.requestChans.Store(requestID, respCh)
		defer connection.requestChans.Delete(requestID)

		if t.config.TimeoutSecond > 0 {
			timeout := time.Duration(t.config.TimeoutSecond) * time.Second
			connection.conn.SetWriteDeadline(time.Now().Add(timeout))
		}

		connection.connMu.Lock()
		err := writeFrame(connection.conn, shardId, requestID, req)
		connection.connMu.Unlock()

		if err != nil {
			return nil, err
		}

		var timeoutCh <-chan time.Time
		if t.config.TimeoutSecond > 0 {
			timeout := time.Duration(t.config.TimeoutSecond) * time.Second
			timeoutCh = time.After(timeout)
		} else {
			timeoutCh = make(chan time.Time) // never fires
		}

		select {
		case result := <-respCh:
			return result.data, result.err
		case <-timeoutCh:
			return nil, fmt.Errorf("request timed out")
		}
	}

	var lastErr error

	maxRetries := t.config.Transport.RetryCount
	if maxRetries < 1 {
		maxRetries = 1
	}

	backoffMs := 50

	for i := 0; i < maxRetries; i++ {
		conn := t.getNextConnection()
		if conn == nil {
			return nil, fmt.Errorf("no active connections available")
		}

		data, err := send(conn)
		if err == nil {
			return data, nil
		}

		lastErr = err
		Logger.Debugf("Request attempt %d/%d failed: %v", i+1, maxRetries, err)

		if i < maxRetries {
			// exponential backoff with +-10% jitter
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			time.Sleep(time.Duration(jitter) * time.Millisecond)
			backoffMs *= 2
		}
	}

	return nil, fmt.Errorf("failed to send request after %d attempts: %v", maxRetries, lastErr)
}

func (t *clientTransport) Close() error {
	t.stopping = true
	t.closeConnections()
	return nil
}

// --------------------------------------------------------------------------
// Connection Management
// --------------------------------------------------------------------------

// getNextConnection selects a connection round robin
func (t *clientTransport) getNextConnection() *clientConnection {
	t.connectionsMu.RLock()
	defer t.connectionsMu.RUnlock()

	if len(t.connections) == 0 {
		return nil
	}

	var index uint64
	if len(t.connections) == 1 {
		index = 0
	} else {
		index = atomic.AddUint64(&t.nextConnIndex, 1) % uint64(len(t.connections))
	}
	return t.connections[index]
}

// closeConnections stops all reader goroutines and closes every connection
func (t *clientTransport) closeConnections() {
	t.connectionsMu.Lock()
	defer t.connectionsMu.Unlock()

	for _, conn := range t.connections {
		close(conn.stopCh)
		if conn.conn != nil {
			conn.conn.Close()
		}
	}

	t.connections = nil
}

// readResponses is the reader loop of one connection: it routes every
// incoming frame to the waiting request by its request ID and reconnects
// when the connection breaks
func (c *clientConnection) readResponses() {
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		if c.parent.config.TimeoutSecond > 0 {
			timeout := time.Duration(c.parent.config.TimeoutSecond) * time.Second
			c.conn.SetReadDeadline(time.Now().Add(timeout))
		}

		shardID, requestID, data, err := readFrame(c.conn, nil)

		respCh, found := c.requestChans.Load(requestID)

		switch {
		case found && err != nil:
			respCh <- responseResult{nil, fmt.Errorf("error reading response: %v", err)}
		case found:
			respCh <- responseResult{data, nil}
		case err != nil:
			Logger.Errorf("Error reading response with unknown request ID %d: %v", requestID, err)
			if err := c.reconnect(); err != nil {
				Logger.Errorf("Failed to reconnect to %s: %v", c.endpoint, err)
				return
			}
		default:
			// response for a request that already timed out or was retried
			Logger.Warningf("Received response for unknown request ID %d with shard ID %d", requestID, shardID)
		}
	}
}

// reconnect dials a fresh connection for this slot, replacing a broken one
func (c *clientConnection) reconnect() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	conn, err := c.parent.connector.Connect(c.endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %v", c.endpoint, err)
	}

	if err := c.parent.connector.UpgradeConnection(conn, c.parent.config); err != nil {
		conn.Close()
		return fmt.Errorf("failed to upgrade connection to %s: %v", c.endpoint, err)
	}

	c.conn = conn
	return nil
}
