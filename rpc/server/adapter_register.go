package server

import (
	"fmt"

	"github.com/ValentinKolb/vcell/lib/register"
	"github.com/ValentinKolb/vcell/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// Per-operation request counters, exposed via the HTTP transport's
// /metrics endpoint.
var (
	setCounter  = metrics.NewCounter(`vcell_rpc_requests_total{op="set"}`)
	swapCounter = metrics.NewCounter(`vcell_rpc_requests_total{op="swap"}`)
	getCounter  = metrics.NewCounter(`vcell_rpc_requests_total{op="get"}`)
	hasCounter  = metrics.NewCounter(`vcell_rpc_requests_total{op="has"}`)
	dropCounter = metrics.NewCounter(`vcell_rpc_requests_total{op="drop"}`)
	infoCounter = metrics.NewCounter(`vcell_rpc_requests_total{op="info"}`)
)

func NewIRegisterServerAdapter() IRPCServerAdapter {
	return &iRegisterServerAdapterImpl{}
}

type iRegisterServerAdapterImpl struct{}

func (adapter *iRegisterServerAdapterImpl) Handle(req *common.Message, reg register.IRegister) *common.Message {
	// Check for nil register
	if reg == nil {
		return common.NewErrorResponse("handler: register is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTRegSet:
		setCounter.Inc()
		err := reg.Set(req.Key, req.Value)
		return common.NewSetResponse(err)
	case common.MsgTRegSwap:
		swapCounter.Inc()
		prev, loaded, err := reg.Swap(req.Key, req.Value)
		return common.NewSwapResponse(prev, loaded, err)
	case common.MsgTRegGet:
		getCounter.Inc()
		val, ok, err := reg.Get(req.Key)
		return common.NewGetResponse(val, ok, err)
	case common.MsgTRegHas:
		hasCounter.Inc()
		ok, err := reg.Has(req.Key)
		return common.NewHasResponse(ok, err)
	case common.MsgTRegDrop:
		dropCounter.Inc()
		err := reg.Drop(req.Key)
		return common.NewDropResponse(err)
	case common.MsgTRegInfo:
		infoCounter.Inc()
		info, err := reg.GetInfo()
		return common.NewInfoResponse(info, err)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC IRegisterAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}
