package cell

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// defaultReclaimInterval is the default time between reclamation sweeps
	defaultReclaimInterval = 100 * time.Millisecond
)

// Reclaimable is anything the Collector can sweep. *Cell implements it.
type Reclaimable interface {
	// ReclaimOldest retires one obsolete entry, returning false once there
	// is nothing (more) to reclaim.
	ReclaimOldest() bool
}

// Collector is the single background reclaimer for one or more cells.
//
// Cells require reclamation calls to be serialized (see Cell.ReclaimOldest);
// the Collector provides that serialization by sweeping all attached cells
// from one goroutine. Publishing and reading stay fully concurrent with the
// sweeps.
type Collector struct {
	interval  time.Duration
	isRunning atomic.Bool
	stopCh    chan struct{}
	done      sync.WaitGroup

	mu      sync.Mutex // guards targets and orders Detach after an in-flight sweep
	targets []Reclaimable
}

// NewCollector creates a collector sweeping at the given interval
// (0 = use default). The collector is created stopped, call Start.
func NewCollector(interval time.Duration) *Collector {
	if interval <= 0 {
		interval = defaultReclaimInterval
	}
	return &Collector{interval: interval}
}

// Attach registers a cell with the collector. Safe to call while the
// collector is running.
func (c *Collector) Attach(target Reclaimable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets = append(c.targets, target)
}

// Detach removes a cell from the collector. Detach blocks while a sweep is
// in flight, so once it returns the cell is no longer swept and can be
// closed safely.
func (c *Collector) Detach(target Reclaimable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.targets {
		if t == target {
			c.targets = append(c.targets[:i], c.targets[i+1:]...)
			return
		}
	}
}

// Start launches the background sweep loop. Calling Start on a running
// collector is a no-op.
func (c *Collector) Start() {
	if !c.isRunning.CompareAndSwap(false, true) {
		return
	}

	c.stopCh = make(chan struct{})
	c.done.Add(1)

	go func() {
		defer c.done.Done()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to finish. Calling Stop on
// a stopped collector is a no-op.
func (c *Collector) Stop() {
	if !c.isRunning.CompareAndSwap(true, false) {
		return
	}
	close(c.stopCh)
	c.done.Wait()
}

// sweep reclaims everything currently reclaimable from all attached cells.
//
// The lock is held for the whole sweep so that Detach cannot return while
// the detached cell is still being swept. Sweeps never block on cell
// operations (ReclaimOldest bails out instead of waiting), so holding the
// lock here only delays Attach/Detach, never publishers or readers.
func (c *Collector) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, target := range c.targets {
		for target.ReclaimOldest() {
		}
	}
}
