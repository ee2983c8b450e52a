package lregister

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/vcell/lib/register"
	regtesting "github.com/ValentinKolb/vcell/lib/register/testing"
)

func Test(t *testing.T) {
	regtesting.RunRegisterTests(t, "LocalRegister", func() register.IRegister {
		return NewLocalRegister(nil)
	})
}

func Benchmark(b *testing.B) {
	regtesting.RunRegisterBenchmarks(b, "LocalRegister", func() register.IRegister {
		return NewLocalRegister(nil)
	})
}

// TestConcurrentSwapFreshKey verifies that concurrent swaps racing on a key
// that is being created agree on who saw the empty key: exactly one caller
// gets loaded=false, every other caller gets a real previously published
// value back, and no published value is silently dropped
func TestConcurrentSwapFreshKey(t *testing.T) {
	reg := NewLocalRegister(nil)
	defer reg.Close()

	const workers = 8
	const rounds = 200

	for round := 0; round < rounds; round++ {
		key := fmt.Sprintf("fresh-%d", round)

		published := make(map[string]bool, workers)
		prevs := make(chan []byte, workers)
		notLoaded := make(chan struct{}, workers)

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			value := fmt.Sprintf("w-%d", w)
			published[value] = true

			wg.Add(1)
			go func(value string) {
				defer wg.Done()
				prev, loaded, err := reg.Swap(key, []byte(value))
				if err != nil {
					t.Errorf("Swap failed: %v", err)
					return
				}
				if !loaded {
					if prev != nil {
						t.Errorf("Expected nil previous value with loaded=false, got %q", prev)
					}
					notLoaded <- struct{}{}
					return
				}
				if prev == nil {
					t.Error("Expected a previous value with loaded=true, got nil")
					return
				}
				prevs <- prev
			}(value)
		}
		wg.Wait()
		close(prevs)
		close(notLoaded)

		if got := len(notLoaded); got != 1 {
			t.Fatalf("Expected exactly one swap to see the empty key, got %d", got)
		}

		// every handed-back value and the final value must be one of the
		// published ones, each exactly once
		seen := make(map[string]bool, workers)
		for prev := range prevs {
			if !published[string(prev)] {
				t.Fatalf("Swap handed back a value that was never published: %q", prev)
			}
			if seen[string(prev)] {
				t.Fatalf("Swap handed back %q twice", prev)
			}
			seen[string(prev)] = true
		}

		final, ok, err := reg.Get(key)
		if err != nil || !ok {
			t.Fatalf("Get failed: err=%v ok=%t", err, ok)
		}
		if !published[string(final)] || seen[string(final)] {
			t.Fatalf("Final value %q is not the one remaining published value", final)
		}
	}
}

// TestBackgroundReclamation verifies that overwritten history is reclaimed
// by the collector while the latest values stay readable
func TestBackgroundReclamation(t *testing.T) {
	reg := NewLocalRegister(&Options{ReclaimInterval: time.Millisecond})
	defer reg.Close()

	const numKeys = 10
	const writesPerKey = 100

	for i := 0; i < writesPerKey; i++ {
		for k := 0; k < numKeys; k++ {
			key := fmt.Sprintf("key-%d", k)
			if err := reg.Set(key, []byte(fmt.Sprintf("value-%d", i))); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
		}
	}

	// the collector should shrink every chain down to its tail node
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		info, err := reg.GetInfo()
		if err != nil {
			t.Fatalf("GetInfo failed: %v", err)
		}
		if info.RetainedNodes == numKeys {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	info, err := reg.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo failed: %v", err)
	}
	if info.RetainedNodes != numKeys {
		t.Errorf("Expected %d retained nodes after reclamation, got %d", numKeys, info.RetainedNodes)
	}

	// latest values must be unaffected by reclamation
	for k := 0; k < numKeys; k++ {
		key := fmt.Sprintf("key-%d", k)
		got, ok, err := reg.Get(key)
		if err != nil || !ok {
			t.Fatalf("Get %s failed: err=%v ok=%t", key, err, ok)
		}
		if string(got) != fmt.Sprintf("value-%d", writesPerKey-1) {
			t.Errorf("Expected latest value for %s, got %s", key, got)
		}
	}
}
