/*
Package pool provides a bounded fork/join worker pool for the task trees of
package parallel.

A Pool with n workers runs at most n-1 goroutines on top of the goroutines
that submitted work. When a task forks, its right child is handed to a free
worker if there is one, and the forking goroutine continues with the left
child before joining. If all workers are busy, both children run on the
forking goroutine. Joins therefore never wait for a worker to become
available, and nested forks cannot deadlock.
*/
package pool

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/exascience/parclust"
)

// A Pool executes fork/join task trees on a bounded number of workers.
//
// The zero Pool is not valid. Use New or Shared.
type Pool struct {
	workers int
	slots   *semaphore.Weighted

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup

	logger     *zap.Logger
	registerer prometheus.Registerer
	metrics    *metrics
}

// An Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger of the pool.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// WithRegisterer registers the metrics of the pool with r.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(p *Pool) {
		p.registerer = r
	}
}

// New returns a pool with the given number of workers, including the
// goroutines that submit work.
//
// New panics if workers < 1, or if the metrics cannot be registered.
func New(workers int, opts ...Option) *Pool {
	if workers < 1 {
		panic(fmt.Sprintf("invalid number of workers: %v", workers))
	}
	p := &Pool{
		workers: workers,
		slots:   semaphore.NewWeighted(int64(workers - 1)),
		logger:  zap.NewNop(),
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registerer != nil {
		p.registerer.MustRegister(p.metrics.collectors()...)
	}
	p.logger.Info("worker pool created", zap.Int("workers", workers))
	return p
}

var (
	sharedOnce sync.Once
	shared     *Pool
)

// Shared returns the process-wide pool, creating it on first use with
// parclust.Default().CoreCount workers. The shared pool is never closed.
func Shared() *Pool {
	sharedOnce.Do(func() {
		cfg := parclust.Default()
		shared = New(cfg.CoreCount, WithLogger(cfg.Log()))
	})
	return shared
}

// Workers returns the number of workers of the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// Submit runs root on the calling goroutine and returns when root and all
// tasks forked from it have terminated. If the pool is closed, root is not
// run and the returned error wraps parclust.ErrSchedulingRejected.
//
// Panics in root are propagated to the caller of Submit.
func (p *Pool) Submit(root func()) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		p.metrics.rejections.Inc()
		p.logger.Warn("worker pool rejected submission", zap.Int("workers", p.workers))
		return fmt.Errorf("pool closed: %w", parclust.ErrSchedulingRejected)
	}
	p.inflight.Add(1)
	p.mu.RUnlock()
	defer p.inflight.Done()

	p.metrics.submissions.Inc()
	root()
	return nil
}

// Fork runs left on the calling goroutine and right on a free worker, or on
// the calling goroutine after left if no worker is free. Fork returns when
// both have terminated.
//
// If left or right panic, Fork panics with the left-most original panic
// value, after both have terminated. The value is the same whether right ran
// on a worker or inline.
func (p *Pool) Fork(left, right func()) {
	if !p.slots.TryAcquire(1) {
		p.metrics.inlineForks.Inc()
		left()
		right()
		return
	}
	p.metrics.spawnedForks.Inc()

	var wg conc.WaitGroup
	wg.Go(func() {
		defer p.slots.Release(1)
		right()
	})
	var pc panics.Catcher
	pc.Try(left)
	recovered := wg.WaitAndRecover()
	if r := pc.Recovered(); r != nil {
		panic(value(r))
	}
	if recovered != nil {
		panic(value(recovered))
	}
}

// value unwraps r down to the value originally passed to panic.
func value(r *panics.Recovered) any {
	v := r.Value
	for {
		inner, ok := v.(*panics.Recovered)
		if !ok {
			return v
		}
		v = inner.Value
	}
}

// Close makes the pool reject further submissions, and waits for the
// submissions that are still running.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.inflight.Wait()
	p.logger.Info("worker pool closed", zap.Int("workers", p.workers))
}
