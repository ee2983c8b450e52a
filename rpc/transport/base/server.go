package base

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/vcell/rpc/common"
	"github.com/ValentinKolb/vcell/rpc/transport"
)

// --------------------------------------------------------------------------
// Connector Interface
// --------------------------------------------------------------------------

// IServerConnector supplies the medium-specific part of a server transport.
// The base transport handles framing, worker limits and buffer reuse, the
// connector only opens the listener.
type IServerConnector interface {
	// Listen opens the listener described by the server config.
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the transport name used in log output (e.g. "tcp").
	GetName() string
}

// --------------------------------------------------------------------------
// Base Server Transport
// --------------------------------------------------------------------------

// serverTransport is the shared server loop behind the stream transports
// (tcp, unix). Each accepted connection gets its own reader goroutine and a
// bounded pool of request workers.
type serverTransport struct {
	connector         IServerConnector
	handler           transport.ServerHandleFunc
	config            common.ServerConfig
	listener          net.Listener
	bufferPool        *sync.Pool
	bufferSize        int
	maxWorkersPerConn int
}

// NewBaseServerTransport creates a server transport on top of the given
// connector. bufferSize is the read buffer handed to each frame read,
// maxWorkersPerConn caps concurrent request processing per connection
// (values below 1 are raised to 1).
func NewBaseServerTransport(connector IServerConnector, bufferSize int, maxWorkersPerConn int) transport.IRPCServerTransport {
	if maxWorkersPerConn < 1 {
		maxWorkersPerConn = 1
	}

	return &serverTransport{
		connector:         connector,
		bufferSize:        bufferSize,
		maxWorkersPerConn: maxWorkersPerConn,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				return make([]byte, bufferSize)
			},
		},
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	t.config = config

	listener, err := t.connector.Listen(config)
	if err != nil {
		return fmt.Errorf("failed to create listener: %v", err)
	}
	t.listener = listener

	Logger.Infof("Starting %s server on %s with %d workers per connection",
		t.connector.GetName(), config.Transport.Endpoint, t.maxWorkersPerConn)

	for {
		conn, err := listener.Accept()
		if err != nil {
			Logger.Errorf("Accept error: %v", err)
			continue
		}

		go t.handleConnection(conn)
	}
}

// --------------------------------------------------------------------------
// Connection Loop
// --------------------------------------------------------------------------

// handleConnection reads frames off one connection and dispatches them to
// worker goroutines. Responses may be written out of order, the request ID
// in each frame lets the client match them up.
func (t *serverTransport) handleConnection(conn net.Conn) {
	defer conn.Close()

	timeout := time.Duration(t.config.TimeoutSecond) * time.Second

	// counting semaphore limiting in-flight workers for this connection
	workerSemaphore := make(chan struct{}, t.maxWorkersPerConn)
	var wg sync.WaitGroup

	// writes to the connection are serialized, responses from concurrent
	// workers must not interleave mid-frame
	var connMutex sync.Mutex

	processRequest := func(shardID, requestID uint64, data []byte) {
		defer func() {
			<-workerSemaphore
			wg.Done()
		}()

		start := time.Now()
		resp := t.handler(shardID, data)
		Logger.Debugf("Processed request for shard %d with requestID %d took %s", shardID, requestID, time.Since(start))

		connMutex.Lock()
		defer connMutex.Unlock()

		if timeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
				Logger.Errorf("Failed to set write deadline: %v", err)
				return
			}
		}

		if err := writeFrame(conn, shardID, requestID, resp); err != nil {
			Logger.Errorf("Failed to write response: %v", err)
		}
	}

	readNext := func() error {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				return fmt.Errorf("failed to set read deadline: %v", err)
			}
		}

		buf := t.bufferPool.Get().([]byte)

		shardID, requestID, data, err := readFrame(conn, buf)
		if err != nil {
			t.bufferPool.Put(buf)
			return err
		}

		// blocks once maxWorkersPerConn requests are in flight, which also
		// stops reading further frames until a worker finishes
		workerSemaphore <- struct{}{}
		wg.Add(1)

		go func() {
			// data aliases buf, the buffer goes back only after processing
			defer t.bufferPool.Put(buf)
			processRequest(shardID, requestID, data)
		}()

		return nil
	}

	for {
		err := readNext()
		if err == io.EOF {
			Logger.Infof("Connection closed by client")
			break
		}
		if err != nil {
			Logger.Errorf("Error handling request: %v", err)
			break
		}
	}

	// in-flight workers still hold pooled buffers and the connection
	wg.Wait()
}
