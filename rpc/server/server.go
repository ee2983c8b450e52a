package server

import (
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ValentinKolb/vcell/lib/register"
	"github.com/ValentinKolb/vcell/lib/register/lregister"
	"github.com/ValentinKolb/vcell/rpc/common"
	"github.com/ValentinKolb/vcell/rpc/serializer"
	"github.com/ValentinKolb/vcell/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = common.GetLogger("rpc")

// serverShard is a struct that represents a shard in the RPC server
// It contains the register it encapsulates and the adapter
// that handles requests for the register
type serverShard struct {
	Register register.IRegister
	Adapter  IRPCServerAdapter
}

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	// Create shards map
	shardMap := xsync.NewMapOf[uint64, serverShard]()

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		shards:     shardMap,
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	shards     *xsync.MapOf[uint64, serverShard]
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(shardId uint64, req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		// Get appropriate shard
		shard, ok := s.shards.Load(shardId)

		// Case shard does not exist -> error
		if !ok {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     "shard not found",
			}
		} else {
			// Decode the request
			err := s.serializer.Deserialize(req, &msg)

			if err != nil {
				respMsg = common.Message{
					MsgType: common.MsgTError,
					Err:     fmt.Sprintf("failed to deserialize request: %s", err),
				}
			} else {
				// Let the adapter handle the request
				respMsg = *shard.Adapter.Handle(&msg, shard.Register)
			}
		}

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			Logger.Errorf("failed to serialize response: %s", err)
			return nil
		}
		return val
	})
}

func (s *rpcServer) init() error {

	// Init logger
	common.InitLoggers(s.config)

	// Configure the background reclamation interval for local registers
	var regOptions *lregister.Options
	if s.config.ReclaimIntervalMS > 0 {
		regOptions = &lregister.Options{
			ReclaimInterval: time.Duration(s.config.ReclaimIntervalMS) * time.Millisecond,
		}
	}

	// CREATE SHARDS

	/*
		Note: A single RPC Server can have any number of shards. Each shard
		encapsulates its own register. The following loop creates all the
		shards and stores them for the RPC server.
	*/

	for _, shardConfig := range s.config.Shards {

		// Case local register
		if shardConfig.Type == common.ShardTypeLocalRegister {
			s.shards.Store(shardConfig.ShardID, serverShard{
				Register: lregister.NewLocalRegister(regOptions),
				Adapter:  NewIRegisterServerAdapter(),
			})
			Logger.Infof("created local register for shard %d", shardConfig.ShardID)
		} else {
			return fmt.Errorf("invalid shard type: %s", shardConfig.Type)
		}
	}

	Logger.Infof("vcell setup completed successfully")

	// Configure the transport layer
	s.registerTransportHandler()

	return nil
}

// Serve starts the RPC server
// This function will also initialize the server plus the shards and start the transport layer
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}
