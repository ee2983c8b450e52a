package cell

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// Test allocator
// --------------------------------------------------------------------------

// countingAllocator tracks every node handed out and back, so tests can
// verify that teardown frees exactly the retained nodes, without leaks or
// double-frees.
type countingAllocator struct {
	t      *testing.T
	mu     sync.Mutex
	allocs int
	frees  int
	live   map[*Node[int]]bool
}

func newCountingAllocator(t *testing.T) *countingAllocator {
	return &countingAllocator{t: t, live: map[*Node[int]]bool{}}
}

func (a *countingAllocator) Get() *Node[int] {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := new(Node[int])
	a.allocs++
	a.live[n] = true
	return n
}

func (a *countingAllocator) Put(n *Node[int]) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.live[n] {
		a.t.Errorf("node %p freed twice or never allocated", n)
		return
	}
	delete(a.live, n)
	a.frees++
}

func (a *countingAllocator) counts() (allocs, frees int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocs, a.frees
}

// --------------------------------------------------------------------------
// Basic functionality
// --------------------------------------------------------------------------

// TestSentinel verifies the initial state of a freshly constructed cell
func TestSentinel(t *testing.T) {
	c := New(42, nil)
	defer c.Close()

	if got := c.Latest(); got != 42 {
		t.Errorf("Expected sentinel value 42 before first publish, got %d", got)
	}

	if got := c.Retained(); got != 1 {
		t.Errorf("Expected exactly the sentinel node to be retained, got %d", got)
	}

	// head == tail, nothing to reclaim
	if c.ReclaimOldest() {
		t.Errorf("Expected ReclaimOldest to be a no-op on a fresh cell")
	}
}

// TestMonotonicVisibility verifies that with a single producer, Latest
// returns the k-th value after the k-th publish
func TestMonotonicVisibility(t *testing.T) {
	c := New(0, nil)
	defer c.Close()

	for i := 1; i <= 100; i++ {
		c.Publish(i)
		if got := c.Latest(); got != i {
			t.Fatalf("Expected Latest to return %d after publish, got %d", i, got)
		}
	}
}

// TestSwapReturnsPrevious verifies the value-integrity property: Swap returns
// exactly the value passed to the immediately preceding publish (or the
// sentinel value on the first call)
func TestSwapReturnsPrevious(t *testing.T) {
	c := New(0, nil)
	defer c.Close()

	if prev := c.Swap(1); prev != 0 {
		t.Errorf("Expected first Swap to return the sentinel value 0, got %d", prev)
	}

	c.Publish(2)

	if prev := c.Swap(3); prev != 2 {
		t.Errorf("Expected Swap to return 2, got %d", prev)
	}

	if got := c.Latest(); got != 3 {
		t.Errorf("Expected Latest to return 3, got %d", got)
	}
}

// TestReclaimScenario walks the cell through publishes and reclamations and
// checks that the tail node is never reclaimed
func TestReclaimScenario(t *testing.T) {
	c := New(0, nil)
	defer c.Close()

	c.Publish(1)
	c.Publish(2)

	if got := c.Latest(); got != 2 {
		t.Fatalf("Expected Latest to return 2, got %d", got)
	}

	// sentinel and the node holding 1 both have successors
	if !c.ReclaimOldest() {
		t.Errorf("Expected reclamation of the sentinel to succeed")
	}
	if !c.ReclaimOldest() {
		t.Errorf("Expected reclamation of the node holding 1 to succeed")
	}

	// the node holding 2 is the tail and must be retained
	if c.ReclaimOldest() {
		t.Errorf("Expected ReclaimOldest to refuse to free the tail")
	}

	if got := c.Retained(); got != 1 {
		t.Errorf("Expected 1 retained node after draining, got %d", got)
	}
	if got := c.Latest(); got != 2 {
		t.Errorf("Expected Latest to still return 2 after reclamation, got %d", got)
	}
}

// TestReaderProtection verifies that a held guard suppresses reclamation
// until it is released
func TestReaderProtection(t *testing.T) {
	c := New(0, nil)
	defer c.Close()

	c.Publish(1)
	c.Publish(2)

	release := c.Guard()

	if c.ReclaimOldest() {
		t.Errorf("Expected ReclaimOldest to be suppressed while a guard is held")
	}

	release()
	release() // releasing twice must not unbalance the counter

	if !c.ReclaimOldest() {
		t.Errorf("Expected reclamation to resume after the guard was released")
	}
}

// TestGuardReleasedByLatest verifies that the scoped guard taken by Latest
// never leaks: reclamation must work right after a read
func TestGuardReleasedByLatest(t *testing.T) {
	c := New(0, nil)
	defer c.Close()

	c.Publish(1)

	for i := 0; i < 10; i++ {
		_ = c.Latest()
	}

	if !c.ReclaimOldest() {
		t.Errorf("Expected reclamation to work after reads, the reader guard leaked")
	}
}

// --------------------------------------------------------------------------
// Teardown
// --------------------------------------------------------------------------

// TestTeardownCompleteness verifies that after N publishes and M successful
// reclamations, Close frees exactly N+1-M nodes
func TestTeardownCompleteness(t *testing.T) {
	alloc := newCountingAllocator(t)
	c := New(0, &Options[int]{Allocator: alloc})

	const publishes = 25
	for i := 1; i <= publishes; i++ {
		c.Publish(i)
	}

	reclaimed := 0
	for i := 0; i < 10; i++ {
		if c.ReclaimOldest() {
			reclaimed++
		}
	}

	c.Close()

	allocs, frees := alloc.counts()
	if allocs != publishes+1 {
		t.Errorf("Expected %d allocations (N publishes + sentinel), got %d", publishes+1, allocs)
	}
	if frees != allocs {
		t.Errorf("Expected every allocated node to be freed, allocated %d freed %d", allocs, frees)
	}
	if reclaimed != 10 {
		t.Errorf("Expected 10 successful reclamations, got %d", reclaimed)
	}
}

// staleLinkAllocator hands out recycled nodes that still carry a next link,
// as an external pool reusing nodes across owners might
type staleLinkAllocator struct {
	garbage Node[int]
}

func (a *staleLinkAllocator) Get() *Node[int] {
	n := new(Node[int])
	n.value = -1
	n.next.Store(&a.garbage)
	return n
}

func (a *staleLinkAllocator) Put(n *Node[int]) {}

// TestAllocatorStaleLinks verifies that a leftover next link on a node coming
// from the allocator never leaks into the chain
func TestAllocatorStaleLinks(t *testing.T) {
	c := New(0, &Options[int]{Allocator: &staleLinkAllocator{}})
	defer c.Close()

	c.Publish(1)
	c.Publish(2)

	if got := c.Retained(); got != 3 {
		t.Errorf("Expected 3 retained nodes, got %d (stale allocator link in the chain)", got)
	}
	if got := c.Latest(); got != 2 {
		t.Errorf("Expected Latest to return 2, got %d", got)
	}

	// the stale link must not make the tail look reclaimable
	for c.ReclaimOldest() {
	}
	if got := c.Retained(); got != 1 {
		t.Errorf("Expected the chain to drain to the tail, got %d retained", got)
	}
}

// --------------------------------------------------------------------------
// Concurrency
// --------------------------------------------------------------------------

// TestConcurrentPublishers verifies value integrity under concurrent Swap
// calls: every published value is handed back as a previous value at most
// once, and the sentinel is handed back exactly once
func TestConcurrentPublishers(t *testing.T) {
	const numProducers = 8
	const itemsPerProducer = 1000

	c := New(0, nil)
	defer c.Close()

	var mu sync.Mutex
	previous := make(map[int]int)

	var wg sync.WaitGroup
	wg.Add(numProducers)

	for p := 0; p < numProducers; p++ {
		go func(producerID int) {
			defer wg.Done()

			base := (producerID + 1) * 1_000_000
			for i := 0; i < itemsPerProducer; i++ {
				prev := c.Swap(base + i)

				mu.Lock()
				previous[prev]++
				mu.Unlock()

				if i%100 == 0 {
					runtime.Gosched()
				}
			}
		}(p)
	}

	wg.Wait()

	if previous[0] != 1 {
		t.Errorf("Expected the sentinel to be handed back exactly once, got %d", previous[0])
	}
	for v, n := range previous {
		if n != 1 {
			t.Errorf("Value %d was handed back %d times", v, n)
		}
	}
	if len(previous) != numProducers*itemsPerProducer {
		t.Errorf("Expected %d distinct previous values, got %d", numProducers*itemsPerProducer, len(previous))
	}
}

// TestConcurrentPublishReadReclaim runs publishers, readers and a single
// reclaimer against one cell and verifies the chain drains to the tail
func TestConcurrentPublishReadReclaim(t *testing.T) {
	const numProducers = 4
	const numReaders = 4
	const itemsPerProducer = 2000

	c := New(0, nil)
	defer c.Close()

	var wg sync.WaitGroup
	stopReaders := make(chan struct{})
	stopReclaim := make(chan struct{})

	// single reclaimer (the serialization the cell requires)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stopReclaim:
				return
			default:
				if !c.ReclaimOldest() {
					runtime.Gosched()
				}
			}
		}
	}()

	// readers
	for r := 0; r < numReaders; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stopReaders:
					return
				default:
					if v := c.Latest(); v < 0 {
						t.Errorf("Read an impossible value %d", v)
						return
					}
				}
			}
		}()
	}

	// producers
	var producers sync.WaitGroup
	producers.Add(numProducers)
	for p := 0; p < numProducers; p++ {
		go func(producerID int) {
			defer producers.Done()
			base := (producerID + 1) * 1_000_000
			for i := 0; i < itemsPerProducer; i++ {
				c.Publish(base + i)
			}
		}(p)
	}

	producers.Wait()
	close(stopReaders)

	// let the reclaimer drain the backlog, then stop it
	deadline := time.Now().Add(2 * time.Second)
	for c.Retained() > 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	close(stopReclaim)
	wg.Wait()

	if got := c.Retained(); got != 1 {
		t.Errorf("Expected the chain to drain to the tail node, got %d retained", got)
	}
}

// --------------------------------------------------------------------------
// Benchmarks
// --------------------------------------------------------------------------

func BenchmarkPublish(b *testing.B) {
	c := New(0, nil)
	defer c.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Publish(i)
	}
}

func BenchmarkLatest(b *testing.B) {
	c := New(0, nil)
	defer c.Close()
	c.Publish(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Latest()
	}
}

func BenchmarkPublishParallel(b *testing.B) {
	c := New(0, nil)
	defer c.Close()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.Publish(i)
			i++
		}
	})
}

func BenchmarkPublishWithReclaim(b *testing.B) {
	c := New(0, nil)
	defer c.Close()

	collector := NewCollector(time.Millisecond)
	collector.Attach(c)
	collector.Start()
	defer collector.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Publish(i)
	}
}
