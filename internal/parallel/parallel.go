// Package parallel provides the chunked parallel-for used to spread
// per-histogram work across CPU cores.
package parallel

import (
	"runtime"
	"sync"

	"github.com/kelseyhightower/envconfig"
)

// Config controls parallel execution of row loops.
type Config struct {
	// Enabled turns goroutine fan-out on. When false every loop runs
	// sequentially on the calling goroutine.
	Enabled bool

	// NumWorkers is the number of worker goroutines. Zero means
	// runtime.NumCPU().
	NumWorkers int `split_words:"true"`

	// MinRows is the smallest row count worth fanning out; below it the
	// loop runs sequentially to avoid goroutine overhead.
	MinRows int `split_words:"true" default:"8"`
}

// Default returns a config sized from the CPU count.
func Default() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinRows:    8,
	}
}

// FromEnv loads config from HISTOPS_-prefixed environment variables
// (HISTOPS_ENABLED, HISTOPS_NUM_WORKERS, HISTOPS_MIN_ROWS). Unset
// variables leave the Default value in place.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := envconfig.Process("histops", &cfg); err != nil {
		return Default(), err
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.NumCPU()
	}
	if cfg.MinRows <= 0 {
		cfg.MinRows = 8
	}
	return cfg, nil
}

// ForRows executes f(i) for i in [0, rows), chunked across workers.
// Iterations must be independent and write disjoint output locations;
// ForRows imposes no ordering between chunks.
func ForRows(rows int, f func(i int), cfg Config) {
	if !cfg.Enabled || rows < cfg.MinRows || cfg.NumWorkers <= 1 {
		for i := 0; i < rows; i++ {
			f(i)
		}
		return
	}

	chunk := (rows + cfg.NumWorkers - 1) / cfg.NumWorkers
	if chunk < 1 {
		chunk = 1
	}

	var wg sync.WaitGroup
	for start := 0; start < rows; start += chunk {
		end := min(start+chunk, rows)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
