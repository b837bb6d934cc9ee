package parclust

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

const (
	// DefaultMaxSerialLength is the input length at or below which operations
	// always run serially.
	DefaultMaxSerialLength = 10000000

	// MinParallelCores is the smallest core count for which parallelism is
	// enabled by default.
	MinParallelCores = 8
)

/*
A Config holds the tunables that decide whether and how an operation is
split across the worker pool.

CoreCount is detected once and should be treated as read-only afterwards.
ParallelismEnabled, MaxSerialLength, and MaxParallelChunkSize may be changed
by the embedding application, preferably before any computation starts.
Changes made while operations are running are not synchronized.

Executor runs the task trees. If it is nil, the process-wide pool from
package pool is used. Logger receives debug output about the serial/parallel
decisions; a nil Logger discards it.

Functions that receive a nil *Config use Default().
*/
type Config struct {
	CoreCount            int
	ParallelismEnabled   bool
	MaxSerialLength      int
	MaxParallelChunkSize int

	Executor Executor
	Logger   *zap.Logger
}

// NewConfig returns a Config for the given core count with default
// thresholds. Parallelism is enabled iff coreCount >= MinParallelCores.
func NewConfig(coreCount int) *Config {
	if coreCount < 1 {
		panic(fmt.Sprintf("invalid core count: %v", coreCount))
	}
	cfg := &Config{
		CoreCount:          coreCount,
		ParallelismEnabled: coreCount >= MinParallelCores,
	}
	cfg.SetMaxSerialLength(DefaultMaxSerialLength)
	return cfg
}

// DefaultConfig returns a Config for runtime.NumCPU() cores.
func DefaultConfig() *Config {
	return NewConfig(runtime.NumCPU())
}

var (
	defaultOnce   sync.Once
	defaultConfig *Config
)

// Default returns the process-wide Config, creating it on first use.
func Default() *Config {
	defaultOnce.Do(func() {
		defaultConfig = DefaultConfig()
	})
	return defaultConfig
}

// OrDefault returns cfg, or Default() if cfg is nil.
func OrDefault(cfg *Config) *Config {
	if cfg == nil {
		return Default()
	}
	return cfg
}

// ShouldParallelize reports whether an input of the given length is split
// across the executor. Inputs of at most MaxSerialLength elements always run
// serially.
func (cfg *Config) ShouldParallelize(length int) bool {
	return cfg.ParallelismEnabled && length > cfg.MaxSerialLength
}

// ChunkSize returns the largest range a leaf task over an input of the given
// length processes without splitting further. The result is at least 1.
func (cfg *Config) ChunkSize(length int) int {
	if chunk := min(cfg.MaxParallelChunkSize, length); chunk > 1 {
		return chunk
	}
	return 1
}

// SetParallelismEnabled overrides the parallelism flag.
func (cfg *Config) SetParallelismEnabled(enabled bool) {
	cfg.ParallelismEnabled = enabled
}

// SetMaxSerialLength sets the serial threshold and recomputes
// MaxParallelChunkSize as n / CoreCount, but at least 1.
//
// SetMaxSerialLength panics if n < 0.
func (cfg *Config) SetMaxSerialLength(n int) {
	if n < 0 {
		panic(fmt.Sprintf("invalid serial length: %v", n))
	}
	cfg.MaxSerialLength = n
	cfg.MaxParallelChunkSize = max(1, n/cfg.CoreCount)
}

// SetMaxParallelChunkSize overrides the computed chunk size.
//
// SetMaxParallelChunkSize panics if n < 1.
func (cfg *Config) SetMaxParallelChunkSize(n int) {
	if n < 1 {
		panic(fmt.Sprintf("invalid chunk size: %v", n))
	}
	cfg.MaxParallelChunkSize = n
}

// Validate checks the invariants of cfg, which may be violated when fields
// are assigned directly instead of through the setters.
func (cfg *Config) Validate() error {
	switch {
	case cfg.CoreCount < 1:
		return fmt.Errorf("parclust: invalid core count: %v", cfg.CoreCount)
	case cfg.MaxSerialLength < 0:
		return fmt.Errorf("parclust: invalid serial length: %v", cfg.MaxSerialLength)
	case cfg.MaxParallelChunkSize < 1:
		return fmt.Errorf("parclust: invalid chunk size: %v", cfg.MaxParallelChunkSize)
	}
	return nil
}

// Log returns the logger of cfg, or a no-op logger.
func (cfg *Config) Log() *zap.Logger {
	if cfg.Logger == nil {
		return zap.NewNop()
	}
	return cfg.Logger
}
