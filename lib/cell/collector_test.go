package cell

import (
	"sync/atomic"
	"testing"
	"time"
)

// TestCollectorDrainsCell verifies that an attached cell is swept down to
// its tail node in the background
func TestCollectorDrainsCell(t *testing.T) {
	c := New(0, nil)
	defer c.Close()

	collector := NewCollector(time.Millisecond)
	collector.Attach(c)
	collector.Start()
	defer collector.Stop()

	for i := 1; i <= 500; i++ {
		c.Publish(i)
	}

	deadline := time.Now().Add(2 * time.Second)
	for c.Retained() > 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if got := c.Retained(); got != 1 {
		t.Errorf("Expected the collector to drain the chain to the tail, got %d retained", got)
	}
	if got := c.Latest(); got != 500 {
		t.Errorf("Expected Latest to return 500 after draining, got %d", got)
	}
}

// TestCollectorDetach verifies that a detached cell is no longer swept
func TestCollectorDetach(t *testing.T) {
	c := New(0, nil)
	defer c.Close()

	collector := NewCollector(time.Millisecond)
	collector.Attach(c)
	collector.Start()
	defer collector.Stop()

	collector.Detach(c)

	for i := 1; i <= 10; i++ {
		c.Publish(i)
	}

	time.Sleep(20 * time.Millisecond)

	if got := c.Retained(); got != 11 {
		t.Errorf("Expected no reclamation after Detach, got %d retained (want 11)", got)
	}
}

// gatedTarget is a Reclaimable that parks inside ReclaimOldest until
// released, so tests can hold a sweep in flight
type gatedTarget struct {
	entered chan struct{}
	release chan struct{}
	sweeps  atomic.Int32
}

func (g *gatedTarget) ReclaimOldest() bool {
	g.sweeps.Add(1)
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release
	return false
}

// TestCollectorDetachWaitsForSweep verifies that Detach does not return while
// a sweep is still visiting the cell, so Close after Detach can never race a
// reclamation
func TestCollectorDetachWaitsForSweep(t *testing.T) {
	target := &gatedTarget{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}

	collector := NewCollector(time.Millisecond)
	collector.Attach(target)
	collector.Start()
	defer collector.Stop()

	// wait until a sweep is parked inside the target
	<-target.entered

	detached := make(chan struct{})
	go func() {
		collector.Detach(target)
		close(detached)
	}()

	select {
	case <-detached:
		t.Fatal("Expected Detach to block while a sweep is in flight")
	case <-time.After(20 * time.Millisecond):
	}

	close(target.release)

	select {
	case <-detached:
	case <-time.After(time.Second):
		t.Fatal("Expected Detach to return once the sweep finished")
	}

	swept := target.sweeps.Load()
	time.Sleep(20 * time.Millisecond)
	if got := target.sweeps.Load(); got != swept {
		t.Errorf("Expected no sweeps after Detach returned, got %d more", got-swept)
	}
}

// TestCollectorStartStopIdempotent verifies repeated Start/Stop calls are safe
func TestCollectorStartStopIdempotent(t *testing.T) {
	collector := NewCollector(0)

	collector.Start()
	collector.Start()
	collector.Stop()
	collector.Stop()

	// restart after stop
	collector.Start()
	collector.Stop()
}
