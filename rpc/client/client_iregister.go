package client

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/vcell/lib/register"
	"github.com/ValentinKolb/vcell/rpc/common"
	"github.com/ValentinKolb/vcell/rpc/serializer"
	"github.com/ValentinKolb/vcell/rpc/transport"
)

// NewRPCRegister creates a new RPC register
// The function takes a shard ID, a config, a transport and a serializer as parameters
// It returns a register.IRegister and an error
func NewRPCRegister(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (register.IRegister, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC register
	r := rpcRegister{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC register
	return &r, nil
}

type rpcRegister struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the register package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcRegister) Set(key string, value []byte) (err error) {
	req := common.NewSetRequest(key, value)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcRegister) Swap(key string, value []byte) (prev []byte, loaded bool, err error) {
	req := common.NewSwapRequest(key, value)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcRegister) Get(key string) (value []byte, loaded bool, err error) {
	req := common.NewGetRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcRegister) Has(key string) (loaded bool, err error) {
	req := common.NewHasRequest(key)
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcRegister) Drop(key string) (err error) {
	req := common.NewDropRequest(key)
	_, err = invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	return err
}

func (i *rpcRegister) GetInfo() (info register.RegisterInfo, err error) {
	req := common.NewInfoRequest()
	resp, err := invokeRPCRequest(i.shardId, req, i.transport, i.serializer)
	if err != nil {
		return register.RegisterInfo{}, err
	}

	// Decode the JSON encoded info from the Meta field
	if err := json.Unmarshal(resp.Meta, &info); err != nil {
		return register.RegisterInfo{}, fmt.Errorf("RPC IRegisterAdapter - Error: %s", err)
	}
	return info, nil
}

// Close closes the underlying transport connection. The server side register
// is not affected by this call.
func (i *rpcRegister) Close() (err error) {
	return i.transport.Close()
}
