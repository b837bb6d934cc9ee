// Package parallel provides the adaptive reduce operations of parclust.
//
// Every operation first asks its parclust.Config whether the input is large
// enough to be split. If it is not, the leaf function runs once over the
// whole input on the calling goroutine, without building a task tree or
// involving the executor. Otherwise a binary task tree is submitted to the
// executor of the Config, or to the shared pool if it has none.
//
// Leaves of the task tree receive disjoint ranges whose union is the whole
// input, so every element is visited exactly once. Partial results are
// combined bottom-up in tree order. The combine functions must be
// associative, because the split points depend on the Config and not on the
// data. With a non-associative combine function, serial and parallel results
// may legitimately differ.
package parallel

import (
	"go.uber.org/zap"

	"github.com/exascience/parclust"
	"github.com/exascience/parclust/internal"
	"github.com/exascience/parclust/pool"
)

func executor(cfg *parclust.Config) parclust.Executor {
	if cfg.Executor != nil {
		return cfg.Executor
	}
	return pool.Shared()
}

// ForkJoin builds the task tree over the half-open range from 0 to n with
// the given chunk size, invokes leaf for each of its leaves through the
// executor of cfg, and combines the results with combine.
//
// Unlike ReduceRange, ForkJoin does not consult cfg.ShouldParallelize; it
// always builds the tree. It returns an error if the executor rejects the
// tree, in which case leaf is not invoked.
//
// ForkJoin panics if n < 0 or chunk < 1. If one or more leaf or combine
// invocations panic, ForkJoin eventually panics with the left-most original
// panic value.
func ForkJoin[T any](
	cfg *parclust.Config,
	n, chunk int,
	leaf func(low, high int) T,
	combine func(x, y T) T,
) (result T, err error) {
	internal.CheckRange(0, n, chunk)
	cfg = parclust.OrDefault(cfg)
	exec := executor(cfg)
	root := rangeTask[T]{
		low:     0,
		high:    n,
		chunk:   chunk,
		leaf:    leaf,
		combine: combine,
		exec:    exec,
	}
	err = exec.Submit(func() {
		result = root.compute()
	})
	return
}

// ForkJoinRange is ForkJoin for leaf functions that produce no result, for
// example transformations that write to disjoint parts of a pre-allocated
// output.
func ForkJoinRange(
	cfg *parclust.Config,
	n, chunk int,
	f func(low, high int),
) error {
	_, err := ForkJoin(cfg, n, chunk,
		func(low, high int) struct{} {
			f(low, high)
			return struct{}{}
		},
		func(struct{}, struct{}) struct{} { return struct{}{} },
	)
	return err
}

// ReduceRange reduces the half-open range from 0 to n, with n >= 1. If
// cfg.ShouldParallelize(n), the range is decomposed into a task tree with
// leaves of at most cfg.ChunkSize(n) elements; otherwise leaf is invoked
// once for the whole range on the calling goroutine.
//
// ReduceRange is the arity-independent core of Reduce and DualReduce. The
// name is only used for logging.
func ReduceRange[T any](
	cfg *parclust.Config,
	name string,
	n int,
	leaf func(low, high int) T,
	combine func(x, y T) T,
) (T, error) {
	cfg = parclust.OrDefault(cfg)
	log := cfg.Log()
	if !cfg.ShouldParallelize(n) {
		log.Debug("serial reduce", zap.String("op", name), zap.Int("length", n))
		return leaf(0, n), nil
	}
	chunk := cfg.ChunkSize(n)
	log.Debug("parallel reduce",
		zap.String("op", name),
		zap.Int("length", n),
		zap.Int("chunk", chunk),
	)
	result, err := ForkJoin(cfg, n, chunk, leaf, combine)
	if err != nil {
		log.Warn("parallel reduce rejected", zap.String("op", name), zap.Error(err))
	}
	return result, err
}

// Reduce reduces xs with r, choosing serial or parallel execution with cfg.
//
// Reduce returns a parclust.DimensionError, without scheduling any work, if
// xs is empty and r.Empty is nil. It returns an error wrapping
// parclust.ErrSchedulingRejected if the executor rejects the task tree; it
// never falls back to serial execution on its own.
func Reduce[E, T any](cfg *parclust.Config, xs []E, r parclust.Reducer[E, T]) (result T, err error) {
	if len(xs) == 0 {
		if r.Empty == nil {
			err = parclust.NewDimensionError(r.Name, "empty input")
			return
		}
		return r.Empty(), nil
	}
	return ReduceRange(cfg, r.Name, len(xs),
		func(low, high int) T { return r.Leaf(xs, low, high) },
		r.Combine,
	)
}

// DualReduce reduces xs and ys with r, choosing serial or parallel execution
// with cfg. Both arrays are split at the same offsets.
//
// DualReduce returns a parclust.DimensionError, without scheduling any work,
// if the lengths of xs and ys differ, or if both are empty and r.Empty is
// nil. Otherwise it behaves like Reduce.
func DualReduce[E, T any](cfg *parclust.Config, xs, ys []E, r parclust.DualReducer[E, T]) (result T, err error) {
	if len(xs) != len(ys) {
		err = parclust.NewDimensionError(r.Name, "lengths differ: %v != %v", len(xs), len(ys))
		return
	}
	if len(xs) == 0 {
		if r.Empty == nil {
			err = parclust.NewDimensionError(r.Name, "empty input")
			return
		}
		return r.Empty(), nil
	}
	return ReduceRange(cfg, r.Name, len(xs),
		func(low, high int) T { return r.Leaf(xs, ys, low, high) },
		r.Combine,
	)
}
