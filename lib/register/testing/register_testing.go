package testing

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/vcell/lib/register"
)

// RegisterFactory is a function that creates a new instance of an IRegister
// implementation
type RegisterFactory func() register.IRegister

// RunRegisterTests runs a comprehensive test suite for an IRegister
// implementation.
func RunRegisterTests(t *testing.T, name string, factory RegisterFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Overwrite", func(t *testing.T) {
			testOverwrite(t, factory())
		})

		t.Run("Swap", func(t *testing.T) {
			testSwap(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("Drop", func(t *testing.T) {
			testDrop(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})

		t.Run("ConcurrentWriters", func(t *testing.T) {
			testConcurrentWriters(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, reg register.IRegister) {
	defer reg.Close()

	testKey := "test-key"
	testValue := []byte("test-value")

	if err := reg.Set(testKey, testValue); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	result, exists, err := reg.Get(testKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue) {
		t.Errorf("Expected value %s, got %s", testValue, result)
	}

	// unknown key
	_, exists, err = reg.Get("unknown-key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if exists {
		t.Errorf("Expected unknown key to not exist")
	}
}

func testOverwrite(t *testing.T, reg register.IRegister) {
	defer reg.Close()

	testKey := "test-key"

	for i := 0; i < 10; i++ {
		value := []byte(fmt.Sprintf("value-%d", i))
		if err := reg.Set(testKey, value); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		result, exists, err := reg.Get(testKey)
		if err != nil || !exists {
			t.Fatalf("Get failed after overwrite %d: err=%v exists=%t", i, err, exists)
		}
		if !bytes.Equal(result, value) {
			t.Errorf("Expected latest value %s, got %s", value, result)
		}
	}
}

func testSwap(t *testing.T, reg register.IRegister) {
	defer reg.Close()

	testKey := "test-key"

	// first swap on an unknown key
	prev, loaded, err := reg.Swap(testKey, []byte("first"))
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	if loaded {
		t.Errorf("Expected first Swap to report an unknown key")
	}
	if len(prev) != 0 {
		t.Errorf("Expected no previous value on first Swap, got %s", prev)
	}

	// second swap returns the first value
	prev, loaded, err = reg.Swap(testKey, []byte("second"))
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	if !loaded {
		t.Errorf("Expected second Swap to report an existing key")
	}
	if !bytes.Equal(prev, []byte("first")) {
		t.Errorf("Expected previous value 'first', got %s", prev)
	}

	// swap after set returns the set value
	if err := reg.Set(testKey, []byte("third")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	prev, _, err = reg.Swap(testKey, []byte("fourth"))
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	if !bytes.Equal(prev, []byte("third")) {
		t.Errorf("Expected previous value 'third', got %s", prev)
	}
}

func testHas(t *testing.T, reg register.IRegister) {
	defer reg.Close()

	exists, err := reg.Has("test-key")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if exists {
		t.Errorf("Expected Has to return false for an unknown key")
	}

	if err := reg.Set("test-key", []byte("value")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	exists, err = reg.Has("test-key")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !exists {
		t.Errorf("Expected Has to return true after Set")
	}
}

func testDrop(t *testing.T, reg register.IRegister) {
	defer reg.Close()

	// dropping an unknown key is a no-op
	if err := reg.Drop("unknown-key"); err != nil {
		t.Fatalf("Drop of unknown key failed: %v", err)
	}

	if err := reg.Set("test-key", []byte("value")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := reg.Drop("test-key"); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}

	_, exists, err := reg.Get("test-key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if exists {
		t.Errorf("Expected key to be gone after Drop")
	}
}

func testInfo(t *testing.T, reg register.IRegister) {
	defer reg.Close()

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := reg.Set(key, []byte("value")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	info, err := reg.GetInfo()
	if err != nil {
		t.Fatalf("GetInfo failed: %v", err)
	}
	if info.NumKeys != 5 {
		t.Errorf("Expected 5 keys, got %d", info.NumKeys)
	}
	if info.Writes != 5 {
		t.Errorf("Expected 5 writes, got %d", info.Writes)
	}
}

func testConcurrentWriters(t *testing.T, reg register.IRegister) {
	defer reg.Close()

	const numWriters = 8
	const writesPerWriter = 200

	var wg sync.WaitGroup
	wg.Add(numWriters)

	for w := 0; w < numWriters; w++ {
		go func(writerID int) {
			defer wg.Done()

			key := fmt.Sprintf("writer-%d", writerID)
			for i := 0; i < writesPerWriter; i++ {
				value := []byte(fmt.Sprintf("%d-%d", writerID, i))
				if err := reg.Set(key, value); err != nil {
					t.Errorf("Writer %d failed to set: %v", writerID, err)
					return
				}
			}
		}(w)
	}

	wg.Wait()

	// every writer's key must hold its final value
	for w := 0; w < numWriters; w++ {
		key := fmt.Sprintf("writer-%d", w)
		want := []byte(fmt.Sprintf("%d-%d", w, writesPerWriter-1))

		got, exists, err := reg.Get(key)
		if err != nil || !exists {
			t.Errorf("Get %s failed: err=%v exists=%t", key, err, exists)
			continue
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Expected %s for key %s, got %s", want, key, got)
		}
	}
}
