// Package parallel splits index ranges across goroutines for the CPU
// backend's data-parallel loops.
package parallel

import (
	"runtime"
	"sync"
)

// Config bounds how a loop is split.
type Config struct {
	Workers   int // goroutines to fan work out to
	Threshold int // below this many items the loop runs inline
}

// DefaultConfig sizes the worker count to the machine.
func DefaultConfig() Config {
	return Config{
		Workers:   runtime.NumCPU(),
		Threshold: 64,
	}
}

// For partitions [0, n) into contiguous sub-ranges, runs fn on each
// from its own goroutine, and waits for all of them. Loops smaller than
// cfg.Threshold run inline on the calling goroutine, as does everything
// when only one worker is configured.
func For(n int, fn func(lo, hi int), cfg Config) {
	if cfg.Workers <= 1 || n < cfg.Threshold {
		fn(0, n)
		return
	}

	chunk := (n + cfg.Workers - 1) / cfg.Workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(lo, hi)
		}()
	}
	wg.Wait()
}
