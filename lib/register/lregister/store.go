package lregister

import (
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/vcell/lib/cell"
	"github.com/ValentinKolb/vcell/lib/register"
	"github.com/ValentinKolb/vcell/lib/register/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// registerImpl implements register.IRegister on top of per-key cells
type registerImpl struct {
	cells     *xsync.MapOf[string, *cell.Cell[[]byte]]
	collector *cell.Collector
	writes    atomic.Uint64
	sizes     *util.SizeHistogram
}

// Options configures the local register during initialization
type Options struct {
	// ReclaimInterval is the time between background reclamation sweeps
	// (0 = use the collector default)
	ReclaimInterval time.Duration
}

// NewLocalRegister creates a new local register instance.
// This register implementation is not distributed and only works in a single
// process. The background collector is started immediately.
//
// Thread-safety: This function is not thread-safe and should only be called
// once during initialization.
func NewLocalRegister(opts *Options) register.IRegister {
	interval := time.Duration(0)
	if opts != nil {
		interval = opts.ReclaimInterval
	}

	r := &registerImpl{
		cells:     xsync.NewMapOf[string, *cell.Cell[[]byte]](),
		collector: cell.NewCollector(interval),
		sizes:     util.NewSizeHistogram(),
	}

	r.collector.Start()

	return r
}

// loadOrCreate returns the cell for a key, creating and attaching it on
// first use
func (r *registerImpl) loadOrCreate(key string) *cell.Cell[[]byte] {
	c, _ := r.cells.LoadOrCompute(key, func() *cell.Cell[[]byte] {
		c := cell.New[[]byte](nil, nil)
		r.collector.Attach(c)
		return c
	})
	return c
}

// recordWrite updates the write counter and size statistics
func (r *registerImpl) recordWrite(value []byte) {
	r.writes.Add(1)
	r.sizes.AddSample(len(value))
}

// --------------------------------------------------------------------------
// Interface Methods (docu see register/interface.go)
// --------------------------------------------------------------------------

func (r *registerImpl) Set(key string, value []byte) error {
	c := r.loadOrCreate(key)

	// copy so the caller may reuse its buffer, published values are immutable
	cp := make([]byte, len(value))
	copy(cp, value)

	c.Publish(cp)
	r.recordWrite(value)
	return nil
}

func (r *registerImpl) Swap(key string, value []byte) ([]byte, bool, error) {
	c := r.loadOrCreate(key)

	cp := make([]byte, len(value))
	copy(cp, value)

	// published values are always non-nil copies, only a fresh cell's
	// sentinel is nil. Deriving the flag from the exchanged value (and not
	// from the map lookup) keeps it consistent with what the tail exchange
	// actually handed back under concurrent swaps on a new key.
	prev := c.Swap(cp)
	r.recordWrite(value)
	return prev, prev != nil, nil
}

func (r *registerImpl) Get(key string) ([]byte, bool, error) {
	c, ok := r.cells.Load(key)
	if !ok {
		return nil, false, nil
	}
	return c.Latest(), true, nil
}

func (r *registerImpl) Has(key string) (bool, error) {
	_, ok := r.cells.Load(key)
	return ok, nil
}

func (r *registerImpl) Drop(key string) error {
	c, ok := r.cells.LoadAndDelete(key)
	if !ok {
		return nil
	}

	// Detach waits out an in-flight sweep, after it returns the collector
	// can no longer reclaim from this cell and Close is safe
	r.collector.Detach(c)
	c.Close()
	return nil
}

func (r *registerImpl) GetInfo() (register.RegisterInfo, error) {
	numKeys := 0
	retained := 0
	r.cells.Range(func(_ string, c *cell.Cell[[]byte]) bool {
		numKeys++
		retained += c.Retained()
		return true
	})

	return register.RegisterInfo{
		NumKeys:         numKeys,
		Writes:          r.writes.Load(),
		RetainedNodes:   retained,
		AvgValueSize:    r.sizes.AverageSize(),
		MedianValueSize: r.sizes.MedianEstimate(),
	}, nil
}

func (r *registerImpl) Close() error {
	r.collector.Stop()

	r.cells.Range(func(key string, c *cell.Cell[[]byte]) bool {
		r.cells.Delete(key)
		c.Close()
		return true
	})
	return nil
}
