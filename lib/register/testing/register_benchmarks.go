package testing

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ValentinKolb/vcell/lib/register"
)

// RunRegisterBenchmarks runs all benchmarks for a register implementation
func RunRegisterBenchmarks(b *testing.B, name string, factory RegisterFactory) {

	b.Run("Set", func(b *testing.B) {
		benchmarkSet(b, factory())
	})

	b.Run("SetExisting", func(b *testing.B) {
		benchmarkSetExisting(b, factory())
	})

	b.Run("Swap", func(b *testing.B) {
		benchmarkSwap(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory())
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Set operation on fresh keys
func benchmarkSet(b *testing.B, reg register.IRegister) {
	b.Cleanup(func() {
		_ = reg.Close()
	})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", counter)
			value := []byte(fmt.Sprintf("test-value-%d", counter))
			_ = reg.Set(key, value)
			counter++
		}
	})
}

// Benchmark for Set operation overwriting one hot key
func benchmarkSetExisting(b *testing.B, reg register.IRegister) {
	b.Cleanup(func() {
		_ = reg.Close()
	})

	_ = reg.Set("hot-key", []byte("initial"))
	value := []byte("test-value")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = reg.Set("hot-key", value)
		}
	})
}

// Benchmark for Swap operation on one hot key
func benchmarkSwap(b *testing.B, reg register.IRegister) {
	b.Cleanup(func() {
		_ = reg.Close()
	})

	_ = reg.Set("hot-key", []byte("initial"))
	value := []byte("test-value")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _, _ = reg.Swap("hot-key", value)
		}
	})
}

// Benchmark for Get operation
func benchmarkGet(b *testing.B, reg register.IRegister) {
	b.Cleanup(func() {
		_ = reg.Close()
	})

	const numKeys = 100
	for i := 0; i < numKeys; i++ {
		_ = reg.Set(fmt.Sprintf("test-key-%d", i), []byte("test-value"))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			_, _, _ = reg.Get(fmt.Sprintf("test-key-%d", counter%numKeys))
			counter++
		}
	})
}

// Benchmark with a realistic mix of reads and writes (90% reads)
func benchmarkMixedUsage(b *testing.B, reg register.IRegister) {
	b.Cleanup(func() {
		_ = reg.Close()
	})

	const numKeys = 100
	for i := 0; i < numKeys; i++ {
		_ = reg.Set(fmt.Sprintf("test-key-%d", i), []byte("test-value"))
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(rand.Int63()))
		for pb.Next() {
			key := fmt.Sprintf("test-key-%d", rng.Intn(numKeys))
			if rng.Intn(10) == 0 {
				_ = reg.Set(key, []byte("updated-value"))
			} else {
				_, _, _ = reg.Get(key)
			}
		}
	})
}
